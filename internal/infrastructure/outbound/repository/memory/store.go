package memory

import (
	"sync"
	"time"

	model "feedstack-post-service/internal/domain/models"
	ports "feedstack-post-service/internal/domain/ports/output"

	"github.com/jackc/pgx/v5/pgtype"
)

type readKey struct {
	userID int64
	postID int64
}

// Store is an in-memory stand-in for the relational schema. The repositories
// built on one Store share its rows, so the foreign key rules of the SQL schema
// (cascade on read markers, SET NULL on post authors) hold across them.
type Store struct {
	log ports.Logger
	mu  sync.RWMutex

	users      map[int64]*model.User
	nextUserID int64

	posts      map[int64]*model.Post
	nextPostID int64

	reads map[readKey]*model.ReadMarker

	// postSeq breaks ties between posts created within the same clock tick.
	postSeq map[int64]int64
	now     func() time.Time
}

func NewStore(log ports.Logger) *Store {
	return &Store{
		log:        log,
		users:      make(map[int64]*model.User),
		nextUserID: 1,
		posts:      make(map[int64]*model.Post),
		nextPostID: 1,
		reads:      make(map[readKey]*model.ReadMarker),
		postSeq:    make(map[int64]int64),
		now:        time.Now,
	}
}

// SetClock replaces the time source used for created_at and read_at.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) timestamp() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: s.now(), Valid: true}
}

func (s *Store) Posts() *PostRepository {
	return &PostRepository{store: s}
}

func (s *Store) Reads() *ReadRepository {
	return &ReadRepository{store: s}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}
