package repos

import (
    "context"
    "sort"
    "sync"
    "time"

    "github.com/google/uuid"

    "github.com/slotter-org/batai-backend/internal/types"
)

type memoryRecord struct {
    conv    types.Conversation
    seq     uint64
}

// memoryConversationRepo keeps conversations in process memory. Reads and
// writes copy turn slices so callers never share backing arrays with the store.
type memoryConversationRepo struct {
    mu      sync.RWMutex
    records map[uuid.UUID]*memoryRecord
    seq     uint64
    now     func() time.Time
}

func NewMemoryConversationRepo() ConversationRepo {
    return newMemoryConversationRepo(func() time.Time { return time.Now().UTC() })
}

func newMemoryConversationRepo(now func() time.Time) *memoryConversationRepo {
    return &memoryConversationRepo{
        records: make(map[uuid.UUID]*memoryRecord),
        now:     now,
    }
}

func (mr *memoryConversationRepo) List(ctx context.Context, owner string) ([]types.ConversationSummary, error) {
    mr.mu.RLock()
    defer mr.mu.RUnlock()

    var recs []*memoryRecord
    for _, rec := range mr.records {
        if rec.conv.OwnerEmail == owner {
            recs = append(recs, rec)
        }
    }
    sort.Slice(recs, func(i, j int) bool {
        a, b := recs[i], recs[j]
        if !a.conv.UpdatedAt.Equal(b.conv.UpdatedAt) {
            return a.conv.UpdatedAt.After(b.conv.UpdatedAt)
        }
        return a.seq > b.seq
    })
    out := make([]types.ConversationSummary, 0, len(recs))
    for _, rec := range recs {
        out = append(out, rec.conv.Summary())
    }
    return out, nil
}

func (mr *memoryConversationRepo) Create(ctx context.Context, conv *types.Conversation) (*types.Conversation, error) {
    mr.mu.Lock()
    defer mr.mu.Unlock()

    if conv.ID == uuid.Nil {
        conv.ID = uuid.New()
    }
    if conv.CreatedAt.IsZero() {
        conv.CreatedAt = mr.now()
    }
    conv.UpdatedAt = conv.CreatedAt
    conv.Turns = copyTurns(conv.Turns)

    mr.seq++
    mr.records[conv.ID] = &memoryRecord{conv: *conv, seq: mr.seq}
    return cloneConversation(conv), nil
}

func (mr *memoryConversationRepo) Get(ctx context.Context, id uuid.UUID, owner string) (*types.Conversation, error) {
    mr.mu.RLock()
    defer mr.mu.RUnlock()

    rec, ok := mr.records[id]
    if !ok || rec.conv.OwnerEmail != owner {
        return nil, ErrConversationNotFound
    }
    return cloneConversation(&rec.conv), nil
}

func (mr *memoryConversationRepo) ReplaceTurns(ctx context.Context, id uuid.UUID, owner string, turns []types.Turn, title string) (*types.Conversation, error) {
    mr.mu.Lock()
    defer mr.mu.Unlock()

    rec, ok := mr.records[id]
    if !ok || rec.conv.OwnerEmail != owner {
        return nil, ErrConversationNotFound
    }
    rec.conv.Turns = copyTurns(turns)
    if title != "" {
        rec.conv.Title = title
    }
    rec.conv.UpdatedAt = mr.now()
    mr.seq++
    rec.seq = mr.seq
    return cloneConversation(&rec.conv), nil
}

func (mr *memoryConversationRepo) Delete(ctx context.Context, id uuid.UUID, owner string) error {
    mr.mu.Lock()
    defer mr.mu.Unlock()

    rec, ok := mr.records[id]
    if !ok || rec.conv.OwnerEmail != owner {
        return ErrConversationNotFound
    }
    delete(mr.records, id)
    return nil
}

func copyTurns(turns []types.Turn) []types.Turn {
    out := make([]types.Turn, len(turns))
    copy(out, turns)
    return out
}

func cloneConversation(c *types.Conversation) *types.Conversation {
    out := *c
    out.Turns = copyTurns(c.Turns)
    return &out
}
