package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Christentimmy/CasaRanche-Backend/pkg/utils"
)

// 同一批用户并发转发同一条帖子，每个用户重复多次；
// 结束后原帖的转发数应当等于去重后的用户数
var (
	baseURL    = flag.String("url", "http://localhost:8080", "server base URL")
	secret     = flag.String("secret", "", "JWT secret used by the server")
	authorID   = flag.String("author", "", "user id that creates the original post")
	userIDs    = flag.String("users", "", "comma separated user ids that repost")
	repeat     = flag.Int("repeat", 20, "reposts per user")
	httpClient *http.Client
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func init() {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 2000
	t.MaxIdleConnsPerHost = 2000
	t.MaxConnsPerHost = 2000
	httpClient = &http.Client{
		Transport: t,
		Timeout:   10 * time.Second,
	}
}

func main() {
	flag.Parse()
	users := splitIDs(*userIDs)
	if *secret == "" || *authorID == "" || len(users) == 0 {
		log.Fatal("-secret, -author and -users are required")
	}

	// 1. 作者发原帖
	originalID, err := createPost(*authorID, map[string]interface{}{
		"text": "stress test original",
	})
	if err != nil {
		log.Fatalf("创建原帖失败: %v", err)
	}

	total := len(users) * *repeat
	fmt.Printf("开始压测：%d 个用户各转发 %d 次 (PostID: %s)...\n", len(users), *repeat, originalID)

	// 2. 并发转发
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
		failed    atomic.Int64
	)
	start := time.Now()
	for _, uid := range users {
		for i := 0; i < *repeat; i++ {
			wg.Add(1)
			go func(userID string) {
				defer wg.Done()
				_, err := createPost(userID, map[string]interface{}{
					"postType":       "repost",
					"originalPostId": originalID,
					"repostComment":  "again",
				})
				if err != nil {
					failed.Add(1)
					return
				}
				succeeded.Add(1)
			}(uid)
		}
	}
	wg.Wait()
	duration := time.Since(start)

	// 3. 校验转发计数
	reposts, err := fetchReposts(*authorID, originalID)
	if err != nil {
		log.Fatalf("读取原帖失败: %v", err)
	}

	fmt.Println("--------------------------------------------------")
	fmt.Printf("压测结束，耗时: %v\n", duration)
	fmt.Printf("总请求数: %d\n", total)
	fmt.Printf("QPS: %.2f\n", float64(total)/duration.Seconds())
	fmt.Printf("转发帖创建成功: %d, 失败: %d\n", succeeded.Load(), failed.Load())
	fmt.Printf("原帖转发数: %d (预期: %d)\n", reposts, len(users))
	fmt.Println("--------------------------------------------------")
	if reposts != int64(len(users)) {
		log.Fatal("转发计数与去重用户数不一致")
	}
}

func splitIDs(raw string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, id := range strings.Split(raw, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func do(userID, method, path string, body io.Reader) (*envelope, error) {
	token, _, err := utils.GenerateToken(*secret, userID, time.Hour)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(method, *baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("status %d: %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 300 || env.Code != 0 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, env.Message)
	}
	return &env, nil
}

func createPost(userID string, payload map[string]interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	env, err := do(userID, http.MethodPost, "/api/post", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func fetchReposts(viewerID, postID string) (int64, error) {
	env, err := do(viewerID, http.MethodGet, "/api/post/"+postID, nil)
	if err != nil {
		return 0, err
	}
	var post struct {
		Engagement struct {
			Reposts int64 `json:"reposts"`
		} `json:"engagement"`
	}
	if err := json.Unmarshal(env.Data, &post); err != nil {
		return 0, err
	}
	return post.Engagement.Reposts, nil
}
