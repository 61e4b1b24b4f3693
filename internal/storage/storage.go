package storage

import (
	"chatapp/backend/internal/models"
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when a user, conversation or message does not exist.
	ErrNotFound = errors.New("storage: record not found")
	// ErrDuplicate is returned when a unique constraint rejects an insert.
	ErrDuplicate = errors.New("storage: duplicate record")
	// ErrNotParticipant is returned when a message sender is not part of the conversation.
	ErrNotParticipant = errors.New("storage: sender is not a conversation participant")
)

// Storage is the persistence boundary of the chat core.
type Storage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsersExcept(ctx context.Context, userID string) ([]models.User, error)

	// FindConversation returns the conversation for the unordered pair or ErrNotFound.
	FindConversation(ctx context.Context, userA, userB string) (*models.Conversation, error)
	// CreateConversation inserts the conversation and registers its id on both
	// participants in one transaction. A second conversation for the same pair
	// fails with ErrDuplicate; a missing participant fails with ErrNotFound.
	CreateConversation(ctx context.Context, conv *models.Conversation) error
	// AppendMessage atomically checks the conversation and sender, inserts the
	// message and bumps the conversation's LastMessageAt.
	AppendMessage(ctx context.Context, msg *models.Message) error
	// ListMessages returns the conversation's messages oldest first.
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
}

// PresenceStore mirrors the in-process presence registry into shared storage.
type PresenceStore interface {
	MarkOnline(ctx context.Context, userID string) error
	MarkOffline(ctx context.Context, userID string) error
	OnlineUsers(ctx context.Context) ([]string, error)
	ResetPresence(ctx context.Context) error
}

// Service is the PostgreSQL (gorm) implementation of Storage. When Redis is
// configured it also implements PresenceStore.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

var _ Storage = (*Service)(nil)
var _ PresenceStore = (*Service)(nil)

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// AutoMigrate creates or updates the tables used by the chat backend.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.Message{},
	)
}

// translate maps gorm errors onto the storage sentinels. The DB must be opened
// with gorm.Config{TranslateError: true} for duplicate keys to be recognized.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		log.Printf("ERROR: Failed to create user %s: %v", user.Username, err)
		return translate(err)
	}
	return nil
}

func (s *Service) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Service) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// ListUsersExcept returns every user but userID, ordered by full name.
func (s *Service) ListUsersExcept(ctx context.Context, userID string) ([]models.User, error) {
	users := []models.User{}
	err := s.DB.WithContext(ctx).
		Select("id", "full_name", "profile_pic").
		Where("id <> ?", userID).
		Order("full_name asc").
		Find(&users).Error
	if err != nil {
		log.Printf("ERROR: Failed to list users for %s: %v", userID, err)
		return nil, err
	}
	return users, nil
}

func (s *Service) FindConversation(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	a, b := models.NormalizePair(userA, userB)

	var conv models.Conversation
	err := s.DB.WithContext(ctx).
		Where("participant_a = ? AND participant_b = ?", a, b).
		First(&conv).Error
	if err != nil {
		return nil, translate(err)
	}
	return &conv, nil
}

func (s *Service) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conv).Error; err != nil {
			return translate(err)
		}

		res := tx.Model(&models.User{}).
			Where("id IN ?", conv.ParticipantIDs()).
			Update("conversation_ids", gorm.Expr("array_append(conversation_ids, ?)", conv.ID))
		if res.Error != nil {
			log.Printf("ERROR: Failed to register conversation %s on users: %v", conv.ID, res.Error)
			return res.Error
		}
		if res.RowsAffected != 2 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Service) AppendMessage(ctx context.Context, msg *models.Message) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row lock serializes appends per conversation; CreatedAt is stamped
		// while holding it so it follows insertion order.
		var conv models.Conversation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", msg.ConversationID).
			First(&conv).Error
		if err != nil {
			return translate(err)
		}
		if !conv.HasParticipant(msg.SenderID) {
			return ErrNotParticipant
		}

		msg.CreatedAt = time.Now().UTC()
		if err := tx.Create(msg).Error; err != nil {
			log.Printf("ERROR: Failed to save message for conversation %s: %v", msg.ConversationID, err)
			return translate(err)
		}

		return tx.Model(&conv).Update("last_message_at", msg.CreatedAt).Error
	})
}

func (s *Service) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	msgs := []models.Message{}
	err := s.DB.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at asc, id asc").
		Find(&msgs).Error
	if err != nil {
		log.Printf("ERROR: Failed to get messages for conversation %s: %v", conversationID, err)
		return nil, err
	}
	return msgs, nil
}
