package repos

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/google/uuid"
    "gorm.io/datatypes"
    "gorm.io/gorm"

    "github.com/slotter-org/batai-backend/internal/logger"
    "github.com/slotter-org/batai-backend/internal/types"
)

// ErrConversationNotFound covers both "no such id" and "owned by someone
// else"; callers must not be able to tell the two apart.
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepo is the persistence contract for conversations. Every
// id-scoped operation filters by id and owner email together.
type ConversationRepo interface {
    List(ctx context.Context, owner string) ([]types.ConversationSummary, error)
    Create(ctx context.Context, conv *types.Conversation) (*types.Conversation, error)
    Get(ctx context.Context, id uuid.UUID, owner string) (*types.Conversation, error)
    // ReplaceTurns swaps the whole turn sequence. title is applied only when
    // non-empty.
    ReplaceTurns(ctx context.Context, id uuid.UUID, owner string, turns []types.Turn, title string) (*types.Conversation, error)
    Delete(ctx context.Context, id uuid.UUID, owner string) error
}

type conversationRepo struct {
    db      *gorm.DB
    log     *logger.Logger
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
    return &conversationRepo{
        db:     db,
        log:    baseLog.With("repo", "ConversationRepo", "driver", "postgres"),
    }
}

func (cr *conversationRepo) List(ctx context.Context, owner string) ([]types.ConversationSummary, error) {
    summaries := []types.ConversationSummary{}
    if err := cr.db.WithContext(ctx).
        Model(&types.Conversation{}).
        Select("id", "title", "created_at", "updated_at").
        Where("owner_email = ?", owner).
        Order("updated_at DESC").
        Order("created_at DESC").
        Find(&summaries).Error; err != nil {
        cr.log.Error("failed to list conversations", "error", err)
        return nil, fmt.Errorf("failed listing conversations: %w", err)
    }
    return summaries, nil
}

func (cr *conversationRepo) Create(ctx context.Context, conv *types.Conversation) (*types.Conversation, error) {
    if conv.ID == uuid.Nil {
        conv.ID = uuid.New()
    }
    now := time.Now().UTC()
    if conv.CreatedAt.IsZero() {
        conv.CreatedAt = now
    }
    conv.UpdatedAt = conv.CreatedAt
    if conv.Turns == nil {
        conv.Turns = datatypes.JSONSlice[types.Turn]{}
    }
    if err := cr.db.WithContext(ctx).Create(conv).Error; err != nil {
        cr.log.Error("failed to create conversation", "error", err)
        return nil, fmt.Errorf("failed creating conversation: %w", err)
    }
    return conv, nil
}

func (cr *conversationRepo) Get(ctx context.Context, id uuid.UUID, owner string) (*types.Conversation, error) {
    return cr.get(ctx, cr.db, id, owner)
}

func (cr *conversationRepo) get(ctx context.Context, tx *gorm.DB, id uuid.UUID, owner string) (*types.Conversation, error) {
    var conv types.Conversation
    if err := tx.WithContext(ctx).
        Where("id = ? AND owner_email = ?", id, owner).
        First(&conv).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return nil, ErrConversationNotFound
        }
        cr.log.Error("failed to get conversation", "conversationID", id, "error", err)
        return nil, fmt.Errorf("failed getting conversation: %w", err)
    }
    return &conv, nil
}

func (cr *conversationRepo) ReplaceTurns(ctx context.Context, id uuid.UUID, owner string, turns []types.Turn, title string) (*types.Conversation, error) {
    if turns == nil {
        turns = []types.Turn{}
    }
    var out *types.Conversation
    err := cr.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
        updates := map[string]interface{}{
            "turns":        datatypes.JSONSlice[types.Turn](turns),
            "updated_at":   time.Now().UTC(),
        }
        if title != "" {
            updates["title"] = title
        }
        res := tx.Model(&types.Conversation{}).
            Where("id = ? AND owner_email = ?", id, owner).
            Updates(updates)
        if res.Error != nil {
            return fmt.Errorf("failed updating conversation: %w", res.Error)
        }
        if res.RowsAffected == 0 {
            return ErrConversationNotFound
        }
        conv, err := cr.get(ctx, tx, id, owner)
        if err != nil {
            return err
        }
        out = conv
        return nil
    })
    if err != nil {
        if !errors.Is(err, ErrConversationNotFound) {
            cr.log.Error("failed to replace conversation turns", "conversationID", id, "error", err)
        }
        return nil, err
    }
    return out, nil
}

func (cr *conversationRepo) Delete(ctx context.Context, id uuid.UUID, owner string) error {
    res := cr.db.WithContext(ctx).
        Where("id = ? AND owner_email = ?", id, owner).
        Delete(&types.Conversation{})
    if res.Error != nil {
        cr.log.Error("failed to delete conversation", "conversationID", id, "error", res.Error)
        return fmt.Errorf("failed deleting conversation: %w", res.Error)
    }
    if res.RowsAffected == 0 {
        return ErrConversationNotFound
    }
    return nil
}
