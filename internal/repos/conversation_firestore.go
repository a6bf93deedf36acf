package repos

import (
    "context"
    "errors"
    "fmt"
    "time"

    "cloud.google.com/go/firestore"
    "github.com/google/uuid"
    "google.golang.org/api/iterator"
    "google.golang.org/grpc/codes"
    "google.golang.org/grpc/status"

    "github.com/slotter-org/batai-backend/internal/logger"
    "github.com/slotter-org/batai-backend/internal/types"
)

const FirestoreConversationCollection = "conversations"

type conversationDoc struct {
    UserID      string          `firestore:"user_id"`
    OwnerEmail  string          `firestore:"owner_email"`
    Title       string          `firestore:"title"`
    Turns       []types.Turn    `firestore:"turns"`
    CreatedAt   time.Time       `firestore:"created_at"`
    UpdatedAt   time.Time       `firestore:"updated_at"`
}

func (d *conversationDoc) toConversation(id uuid.UUID) *types.Conversation {
    turns := d.Turns
    if turns == nil {
        turns = []types.Turn{}
    }
    return &types.Conversation{
        ID:         id,
        OwnerEmail: d.OwnerEmail,
        UserID:     d.UserID,
        Title:      d.Title,
        Turns:      turns,
        CreatedAt:  d.CreatedAt,
        UpdatedAt:  d.UpdatedAt,
    }
}

type firestoreConversationRepo struct {
    client  *firestore.Client
    log     *logger.Logger
}

func NewFirestoreConversationRepo(client *firestore.Client, baseLog *logger.Logger) ConversationRepo {
    return &firestoreConversationRepo{
        client: client,
        log:    baseLog.With("repo", "ConversationRepo", "driver", "firestore"),
    }
}

func (fr *firestoreConversationRepo) col() *firestore.CollectionRef {
    return fr.client.Collection(FirestoreConversationCollection)
}

func (fr *firestoreConversationRepo) doc(id uuid.UUID) *firestore.DocumentRef {
    return fr.col().Doc(id.String())
}

// ownedSnapshot loads id and checks ownership in one place so a foreign
// document looks exactly like a missing one.
func ownedSnapshot(snap *firestore.DocumentSnapshot, err error, owner string) (*conversationDoc, error) {
    if err != nil {
        if status.Code(err) == codes.NotFound {
            return nil, ErrConversationNotFound
        }
        return nil, err
    }
    var d conversationDoc
    if err := snap.DataTo(&d); err != nil {
        return nil, fmt.Errorf("failed decoding conversation: %w", err)
    }
    if d.OwnerEmail != owner {
        return nil, ErrConversationNotFound
    }
    return &d, nil
}

func (fr *firestoreConversationRepo) List(ctx context.Context, owner string) ([]types.ConversationSummary, error) {
    iter := fr.col().
        Where("owner_email", "==", owner).
        OrderBy("updated_at", firestore.Desc).
        Select("title", "created_at", "updated_at").
        Documents(ctx)
    defer iter.Stop()

    summaries := []types.ConversationSummary{}
    for {
        snap, err := iter.Next()
        if errors.Is(err, iterator.Done) {
            break
        }
        if err != nil {
            fr.log.Error("failed to list conversations", "error", err)
            return nil, fmt.Errorf("failed listing conversations: %w", err)
        }
        id, err := uuid.Parse(snap.Ref.ID)
        if err != nil {
            fr.log.Warn("skipping conversation with non-uuid id", "docID", snap.Ref.ID)
            continue
        }
        var d conversationDoc
        if err := snap.DataTo(&d); err != nil {
            return nil, fmt.Errorf("failed decoding conversation: %w", err)
        }
        summaries = append(summaries, types.ConversationSummary{
            ID:         id,
            Title:      d.Title,
            CreatedAt:  d.CreatedAt,
            UpdatedAt:  d.UpdatedAt,
        })
    }
    return summaries, nil
}

func (fr *firestoreConversationRepo) Create(ctx context.Context, conv *types.Conversation) (*types.Conversation, error) {
    if conv.ID == uuid.Nil {
        conv.ID = uuid.New()
    }
    if conv.CreatedAt.IsZero() {
        conv.CreatedAt = time.Now().UTC()
    }
    conv.UpdatedAt = conv.CreatedAt
    if conv.Turns == nil {
        conv.Turns = []types.Turn{}
    }
    d := conversationDoc{
        UserID:     conv.UserID,
        OwnerEmail: conv.OwnerEmail,
        Title:      conv.Title,
        Turns:      conv.Turns,
        CreatedAt:  conv.CreatedAt,
        UpdatedAt:  conv.UpdatedAt,
    }
    if _, err := fr.doc(conv.ID).Create(ctx, d); err != nil {
        fr.log.Error("failed to create conversation", "error", err)
        return nil, fmt.Errorf("failed creating conversation: %w", err)
    }
    return conv, nil
}

func (fr *firestoreConversationRepo) Get(ctx context.Context, id uuid.UUID, owner string) (*types.Conversation, error) {
    snap, err := fr.doc(id).Get(ctx)
    d, err := ownedSnapshot(snap, err, owner)
    if err != nil {
        return nil, fr.wrap("get", id, err)
    }
    return d.toConversation(id), nil
}

func (fr *firestoreConversationRepo) ReplaceTurns(ctx context.Context, id uuid.UUID, owner string, turns []types.Turn, title string) (*types.Conversation, error) {
    if turns == nil {
        turns = []types.Turn{}
    }
    ref := fr.doc(id)
    var out *types.Conversation
    err := fr.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
        snap, err := tx.Get(ref)
        d, err := ownedSnapshot(snap, err, owner)
        if err != nil {
            return err
        }
        now := time.Now().UTC()
        updates := []firestore.Update{
            {Path: "turns", Value: turns},
            {Path: "updated_at", Value: now},
        }
        d.Turns = turns
        d.UpdatedAt = now
        if title != "" {
            updates = append(updates, firestore.Update{Path: "title", Value: title})
            d.Title = title
        }
        if err := tx.Update(ref, updates); err != nil {
            return err
        }
        out = d.toConversation(id)
        return nil
    })
    if err != nil {
        return nil, fr.wrap("update", id, err)
    }
    return out, nil
}

func (fr *firestoreConversationRepo) Delete(ctx context.Context, id uuid.UUID, owner string) error {
    ref := fr.doc(id)
    err := fr.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
        snap, err := tx.Get(ref)
        if _, err := ownedSnapshot(snap, err, owner); err != nil {
            return err
        }
        return tx.Delete(ref)
    })
    if err != nil {
        return fr.wrap("delete", id, err)
    }
    return nil
}

func (fr *firestoreConversationRepo) wrap(op string, id uuid.UUID, err error) error {
    if errors.Is(err, ErrConversationNotFound) {
        return ErrConversationNotFound
    }
    fr.log.Error("firestore operation failed", "op", op, "conversationID", id, "error", err)
    return fmt.Errorf("failed to %s conversation: %w", op, err)
}
