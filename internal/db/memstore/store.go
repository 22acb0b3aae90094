// Package memstore is an in-memory stand-in for the sqlc query set, used by
// service and handler tests. Method signatures mirror *sqlc.Queries.
package memstore

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/acoustichub/crm/internal/db"
	"github.com/acoustichub/crm/internal/db/sqlc"
)

type key = [16]byte

// Store holds every table in maps keyed by row id.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	// Now returns the timestamp stamped on writes. Defaults to a strictly
	// increasing clock so ordering by created_at is deterministic.
	Now func() time.Time

	failures map[string]error
	last     time.Time

	tables
}

type tables struct {
	clients       map[key]sqlc.Client
	channels      map[key]sqlc.ClientChannel
	conversations map[key]sqlc.Conversation
	messages      map[key]sqlc.Message
	comments      map[key]sqlc.Comment
	history       map[key]sqlc.ClientStatusHistory
	stages        map[key]sqlc.KanbanStatus
	branches      map[key]sqlc.Branch
	integrations  map[key]sqlc.Integration
	smsLogs       map[key]sqlc.SmsLog
	dispatchLogs  map[key]sqlc.DispatchLog
	users         map[key]sqlc.User
	roles         map[key]sqlc.Role
	permissions   map[key]sqlc.Permission
	grants        map[grant]struct{}
}

func New() *Store {
	s := &Store{
		failures: map[string]error{},
		tables: tables{
			clients:       map[key]sqlc.Client{},
			channels:      map[key]sqlc.ClientChannel{},
			conversations: map[key]sqlc.Conversation{},
			messages:      map[key]sqlc.Message{},
			comments:      map[key]sqlc.Comment{},
			history:       map[key]sqlc.ClientStatusHistory{},
			stages:        map[key]sqlc.KanbanStatus{},
			branches:      map[key]sqlc.Branch{},
			integrations:  map[key]sqlc.Integration{},
			smsLogs:       map[key]sqlc.SmsLog{},
			dispatchLogs:  map[key]sqlc.DispatchLog{},
			users:         map[key]sqlc.User{},
			roles:         map[key]sqlc.Role{},
			permissions:   map[key]sqlc.Permission{},
			grants:        map[grant]struct{}{},
		},
	}
	for _, name := range []string{"super_admin", "admin", "call_center"} {
		id := db.NewUUID()
		s.roles[id.Bytes] = sqlc.Role{ID: id, Name: name, CreatedAt: s.stamp()}
	}
	s.seedPermissions()
	return s
}

// SeedDefaultStages inserts the stages shipped by the initial migration.
func (s *Store) SeedDefaultStages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, slug := range []string{"new", "contacted", "appointment", "sold", "lost"} {
		id := db.NewUUID()
		s.stages[id.Bytes] = sqlc.KanbanStatus{
			ID: id, Name: slug, Slug: slug, Color: "#6b7280", Position: int32(i), IsActive: true,
			CreatedAt: s.stamp(), UpdatedAt: s.stamp(),
		}
	}
}

// Fail makes the named method return err until cleared with a nil err.
func (s *Store) Fail(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, method)
		return
	}
	s.failures[method] = err
}

// WithTx runs fn with snapshot semantics: any error restores every table to
// its state before fn started. Transactions are serialised.
func (s *Store) WithTx(_ context.Context, fn func(*Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.tables.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.tables = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Tx adapts Store.WithTx to a service-specific store interface.
type Tx[S any] struct {
	store *Store
	bind  func(*Store) S
}

func NewTx[S any](s *Store, bind func(*Store) S) *Tx[S] {
	return &Tx[S]{store: s, bind: bind}
}

func (t *Tx[S]) WithTx(ctx context.Context, fn func(S) error) error {
	return t.store.WithTx(ctx, func(s *Store) error { return fn(t.bind(s)) })
}

func (t tables) clone() tables {
	out := tables{
		clients:       maps.Clone(t.clients),
		channels:      maps.Clone(t.channels),
		conversations: maps.Clone(t.conversations),
		messages:      maps.Clone(t.messages),
		comments:      maps.Clone(t.comments),
		history:       maps.Clone(t.history),
		stages:        maps.Clone(t.stages),
		branches:      maps.Clone(t.branches),
		integrations:  maps.Clone(t.integrations),
		smsLogs:       maps.Clone(t.smsLogs),
		dispatchLogs:  maps.Clone(t.dispatchLogs),
		users:         maps.Clone(t.users),
		roles:         maps.Clone(t.roles),
		permissions:   maps.Clone(t.permissions),
		grants:        maps.Clone(t.grants),
	}
	for id, c := range out.clients {
		c.Tags = slices.Clone(c.Tags)
		c.MergedFrom = slices.Clone(c.MergedFrom)
		out.clients[id] = c
	}
	return out
}

// stamp must be called with mu held.
func (s *Store) stamp() pgtype.Timestamptz {
	var now time.Time
	if s.Now != nil {
		now = s.Now()
	} else {
		now = time.Now()
		if !now.After(s.last) {
			now = s.last.Add(time.Microsecond)
		}
		s.last = now
	}
	return pgtype.Timestamptz{Time: now, Valid: true}
}

// fail must be called with mu held.
func (s *Store) fail(method string) error {
	return s.failures[method]
}

func textOrEmpty(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

func newestFirst(a, b pgtype.Timestamptz) int {
	return b.Time.Compare(a.Time)
}

// Counts reports row counts per table for assertions.
type Counts struct {
	Clients, Channels, Conversations, Messages, Comments, History, DispatchLogs, SmsLogs int
}

func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		Clients:       len(s.clients),
		Channels:      len(s.channels),
		Conversations: len(s.conversations),
		Messages:      len(s.messages),
		Comments:      len(s.comments),
		History:       len(s.history),
		DispatchLogs:  len(s.dispatchLogs),
		SmsLogs:       len(s.smsLogs),
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

var errNoRows = pgx.ErrNoRows
