// Package storage persists the development relay's data in PostgreSQL and
// carries its cross-instance traffic over Redis.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"nexthire/chat/internal/models"
	"nexthire/chat/internal/room"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventsChannel is the Redis channel shared by all relay instances.
const EventsChannel = "nexthire:events"

const presenceKey = "nexthire:online"

type Storage interface {
	SaveMessage(ctx context.Context, roomID string, out models.OutgoingMessage) (*models.ChatHistory, error)
	GetChatHistory(ctx context.Context, roomID string) ([]models.ChatHistory, error)

	SaveProfile(ctx context.Context, p *models.Profile) error
	GetApplicants(ctx context.Context, recruiterID string) ([]models.Applicant, error)

	SaveGroup(ctx context.Context, g *models.ChatGroup) error
	SaveInterview(ctx context.Context, rec *models.InterviewRecord) error
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Log   *zap.SugaredLogger
}

// NewStorageService Constructor. rdb may be nil, in which case publishing and
// presence are no-ops.
func NewStorageService(db *gorm.DB, rdb *redis.Client, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{DB: db, Redis: rdb, Log: log}
}

// Migrate creates or updates the relay tables.
func (s *Service) Migrate() error {
	return s.DB.AutoMigrate(
		&models.ChatHistory{},
		&models.Profile{},
		&models.ChatGroup{},
		&models.InterviewRecord{},
	)
}

// SaveMessage stores an outgoing message and returns the record with its id
// and creation time.
func (s *Service) SaveMessage(ctx context.Context, roomID string, out models.OutgoingMessage) (*models.ChatHistory, error) {
	history := models.NewChatHistory(roomID, out)
	if err := s.DB.WithContext(ctx).Create(history).Error; err != nil {
		s.Log.Errorw("failed to save message", "room", roomID, "error", err)
		return nil, err
	}
	return history, nil
}

// GetChatHistory returns the messages of a room, oldest first.
func (s *Service) GetChatHistory(ctx context.Context, roomID string) ([]models.ChatHistory, error) {
	var history []models.ChatHistory
	err := s.DB.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at asc, id asc").
		Find(&history).Error
	if err != nil {
		s.Log.Errorw("failed to get chat history", "room", roomID, "error", err)
		return nil, err
	}
	return history, nil
}

// SaveProfile inserts or refreshes a participant profile.
func (s *Service) SaveProfile(ctx context.Context, p *models.Profile) error {
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "role", "photo", "updated_at"}),
	}).Create(p).Error
}

// GetApplicants lists the candidates who share a room with the recruiter.
func (s *Service) GetApplicants(ctx context.Context, recruiterID string) ([]models.Applicant, error) {
	var roomIDs []string
	err := s.DB.WithContext(ctx).Model(&models.ChatHistory{}).
		Distinct("room_id").
		Where("room_id LIKE ? OR room_id LIKE ?", likePrefix(recruiterID), likeSuffix(recruiterID)).
		Pluck("room_id", &roomIDs).Error
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, id := range roomIDs {
		if peer, err := room.Peer(id, recruiterID); err == nil {
			ids = append(ids, peer)
		}
	}
	if len(ids) == 0 {
		return []models.Applicant{}, nil
	}

	var profiles []models.Profile
	err = s.DB.WithContext(ctx).
		Where("id IN ? AND role = ?", ids, string(models.RoleCandidate)).
		Order("name asc").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.Applicant, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.Applicant())
	}
	return out, nil
}

func (s *Service) SaveGroup(ctx context.Context, g *models.ChatGroup) error {
	if err := s.DB.WithContext(ctx).Create(g).Error; err != nil {
		s.Log.Errorw("failed to save group", "name", g.Name, "error", err)
		return err
	}
	return nil
}

func (s *Service) SaveInterview(ctx context.Context, rec *models.InterviewRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Create(rec).Error; err != nil {
		s.Log.Errorw("failed to save interview", "room", rec.RoomID, "error", err)
		return err
	}
	return nil
}

// Publish sends payload to every relay instance.
func (s *Service) Publish(ctx context.Context, payload any) error {
	if s.Redis == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode published event: %w", err)
	}
	return s.Redis.Publish(ctx, EventsChannel, data).Err()
}

// Subscribe returns the raw payloads published by any instance. The channel
// closes when ctx is done.
func (s *Service) Subscribe(ctx context.Context) (<-chan []byte, error) {
	if s.Redis == nil {
		return nil, nil
	}
	pubsub := s.Redis.Subscribe(ctx, EventsChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", EventsChannel, err)
	}

	out := make(chan []byte, 64)
	go func() {
		defer close(out)
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// SetOnline records whether userID has a live connection on any instance.
func (s *Service) SetOnline(ctx context.Context, userID string, online bool) error {
	if s.Redis == nil {
		return nil
	}
	if online {
		return s.Redis.SAdd(ctx, presenceKey, userID).Err()
	}
	return s.Redis.SRem(ctx, presenceKey, userID).Err()
}

// IsOnline reports whether userID is connected to any instance.
func (s *Service) IsOnline(ctx context.Context, userID string) (bool, error) {
	if s.Redis == nil {
		return false, nil
	}
	ok, err := s.Redis.SIsMember(ctx, presenceKey, userID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return ok, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePrefix(id string) string { return likeEscaper.Replace(id+room.Separator) + "%" }
func likeSuffix(id string) string { return "%" + likeEscaper.Replace(room.Separator+id) }
