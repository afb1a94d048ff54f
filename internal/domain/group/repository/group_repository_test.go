package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/Christentimmy/CasaRanche-Backend/pkg/database/dbtest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGetByID(t *testing.T) {
	t.Run("loads members", func(t *testing.T) {
		db, sm := dbtest.NewMockDB(t)
		repo := NewGroupRepository(db)
		now := time.Now()

		sm.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "groups" WHERE id = $1 AND "groups"."deleted_at" IS NULL`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id", "visibility", "created_at", "updated_at"}).
				AddRow("g1", "Runners", "u1", "private", now, now))
		sm.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "group_members" WHERE "group_members"."group_id" = $1`)).
			WithArgs("g1").
			WillReturnRows(sqlmock.NewRows([]string{"group_id", "user_id", "role", "joined_at"}).
				AddRow("g1", "u1", "owner", now).
				AddRow("g1", "u2", "member", now))

		group, err := repo.GetByID(context.Background(), "g1")
		require.NoError(t, err)
		assert.Equal(t, "Runners", group.Name)
		assert.True(t, group.HasMember("u2"))
		assert.False(t, group.HasMember("u3"))
		assert.NoError(t, sm.ExpectationsWereMet())
	})

	t.Run("missing group", func(t *testing.T) {
		db, sm := dbtest.NewMockDB(t)
		repo := NewGroupRepository(db)

		sm.ExpectQuery(`SELECT \* FROM "groups"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByID(context.Background(), "missing")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}
