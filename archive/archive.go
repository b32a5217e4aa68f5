// Package archive persists tweets delivered by a stream.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/anatolykoptev/go-rettiwt"
)

// TweetRecord is one archived tweet.
type TweetRecord struct {
	ID         string `gorm:"primaryKey;size:32"`
	AuthorID   string `gorm:"index;size:32"`
	AuthorName string `gorm:"size:64"`
	Text       string
	Lang       string `gorm:"size:16"`
	ReplyTo    string `gorm:"size:32"`
	QuotedID   string `gorm:"size:32"`
	Hashtags   string
	Likes      int
	Retweets   int
	Replies    int
	Views      int
	CreatedAt  time.Time `gorm:"index"`
	ArchivedAt time.Time `gorm:"autoCreateTime"`
}

// Store writes tweets to a sqlite or postgres database.
type Store struct {
	db *gorm.DB
}

// Open connects to url and migrates the schema. A postgres:// or postgresql:// url
// selects postgres; anything else is a sqlite file path (":memory:" included).
func Open(url string) (*Store, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	var db *gorm.DB
	var err error
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  url,
			PreferSimpleProtocol: true,
		}), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
	} else {
		if url == "" {
			url = "rettiwt.db"
		}
		if url != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(url), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		db, err = gorm.Open(sqlite.Open(url), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
		}
	}

	if err := db.AutoMigrate(&TweetRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// Save archives tweets. Tweets already archived are left untouched.
func (s *Store) Save(ctx context.Context, tweets ...*rettiwt.Tweet) error {
	records := make([]TweetRecord, 0, len(tweets))
	for _, t := range tweets {
		if t == nil {
			continue
		}
		records = append(records, newRecord(t))
	}
	if len(records) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&records).Error
}

// Recent returns the latest archived tweets, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]TweetRecord, error) {
	var out []TweetRecord
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

// Count returns the number of archived tweets.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&TweetRecord{}).Count(&n).Error
	return n, err
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newRecord(t *rettiwt.Tweet) TweetRecord {
	r := TweetRecord{
		ID:        t.ID,
		AuthorID:  t.AuthorID,
		Text:      t.Text,
		Lang:      t.Lang,
		ReplyTo:   t.ReplyTo,
		QuotedID:  t.QuotedID,
		Hashtags:  strings.Join(t.Hashtags, ","),
		Likes:     t.Likes,
		Retweets:  t.Retweets,
		Replies:   t.Replies,
		Views:     t.Views,
		CreatedAt: t.CreatedAt,
	}
	if t.Author != nil {
		r.AuthorName = t.Author.UserName
	}
	return r
}
