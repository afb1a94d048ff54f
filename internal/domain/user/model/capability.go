package model

// GhostLevel 匿名等级 A-D
type GhostLevel string

const (
	LevelA GhostLevel = "A"
	LevelB GhostLevel = "B"
	LevelC GhostLevel = "C"
	LevelD GhostLevel = "D"
)

// Levels 按解锁顺序排列
var Levels = []GhostLevel{LevelA, LevelB, LevelC, LevelD}

// Capabilities 能力集合
type Capabilities struct {
	CanWriteText bool `json:"canWriteText"`
	CanAddPhotos bool `json:"canAddPhotos"`
	CanAddVideos bool `json:"canAddVideos"`
	CanAddMusic  bool `json:"canAddMusic"`
}

var levelCapabilities = map[GhostLevel]Capabilities{
	LevelA: {CanWriteText: true},
	LevelB: {CanWriteText: true, CanAddPhotos: true},
	LevelC: {CanWriteText: true, CanAddPhotos: true, CanAddVideos: true},
	LevelD: {CanWriteText: true, CanAddPhotos: true, CanAddVideos: true, CanAddMusic: true},
}

// CapabilitiesFor 返回等级对应的能力，未知等级按最低等级处理
func CapabilitiesFor(level GhostLevel) Capabilities {
	if caps, ok := levelCapabilities[level]; ok {
		return caps
	}
	return levelCapabilities[LevelA]
}

// Subsumes 判断 c 是否包含 other 的全部能力
func (c Capabilities) Subsumes(other Capabilities) bool {
	return (c.CanWriteText || !other.CanWriteText) &&
		(c.CanAddPhotos || !other.CanAddPhotos) &&
		(c.CanAddVideos || !other.CanAddVideos) &&
		(c.CanAddMusic || !other.CanAddMusic)
}
