package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cancer-not-cancer/api/internal/platform/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

var RDB *redis.Client

// ErrNoSession is returned when a session id is unknown or expired.
var ErrNoSession = errors.New("session not found")

func ConnectRedis() {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	ctx := context.Background()
	if _, err := RDB.Ping(ctx).Result(); err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	log.Info("Connected to Redis")
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		log.Info("Redis connection closed")
	}
}

// Session is the server-side record behind the session cookie. Only the
// user id is stored; permissions are re-read from the database on every
// request so admin edits take effect without re-login.
type Session struct {
	UserID int64 `json:"user_id"`
}

// Store keeps sessions in Redis keyed by opaque id, expiring after the
// configured TTL.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func sessionKey(id string) string {
	return "session:" + id
}

// Create persists a new session and returns its id.
func (s *Store) Create(ctx context.Context, sess Session) (string, error) {
	id := uuid.NewString()
	payload, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("session.Store.Create marshal: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(id), payload, config.AppConfig.SessionTTL).Err(); err != nil {
		return "", fmt.Errorf("session.Store.Create set: %w", err)
	}
	return id, nil
}

// Get looks up a session by id.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	payload, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("session.Store.Get: %w", err)
	}
	sess := &Session{}
	if err := json.Unmarshal(payload, sess); err != nil {
		return nil, fmt.Errorf("session.Store.Get unmarshal: %w", err)
	}
	return sess, nil
}

// Destroy invalidates a session. Unknown ids are not an error.
func (s *Store) Destroy(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("session.Store.Destroy: %w", err)
	}
	return nil
}
