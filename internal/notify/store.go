package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Publisher is implemented by anything that accepts new notifications.
type Publisher interface {
	Add(title, message string, kind Kind) Record
}

// DefaultTitlePrefix is prepended to host notification titles.
const DefaultTitlePrefix = "JULFERIIN"

// Snapshot is a consistent view of the store handed to subscribers.
type Snapshot struct {
	Notifications []Record `json:"notifications"`
	Toasts        []Record `json:"toasts"`
	Unread        int      `json:"unread"`

	version uint64
}

// Options configures a Store. Zero values select the defaults.
type Options struct {
	Persister      *Persister
	Host           Host
	Logger         *slog.Logger
	Now            func() time.Time
	NewID          func() string
	TitlePrefix    string
	ToastWindow    time.Duration
	ToastLimit     int
	PersistTimeout time.Duration
}

// Store owns the notification collection. Mutations replace the collection
// wholesale and persist it through the Persister as a best-effort side effect.
type Store struct {
	mu          sync.Mutex
	records     []Record
	toasts      []Record
	subscribers map[int]func(Snapshot)
	nextSub     int
	version     uint64

	persistMu    sync.Mutex
	savedVersion uint64

	publishMu        sync.Mutex
	publishedVersion uint64

	persister      *Persister
	host           Host
	log            *slog.Logger
	now            func() time.Time
	newID          func() string
	titlePrefix    string
	toastWindow    time.Duration
	toastLimit     int
	persistTimeout time.Duration
}

// NewStore builds a Store and loads any previously saved collection.
// A load failure is logged and the store starts empty.
func NewStore(ctx context.Context, opts Options) *Store {
	s := &Store{
		records:        []Record{},
		toasts:         []Record{},
		subscribers:    make(map[int]func(Snapshot)),
		persister:      opts.Persister,
		host:           opts.Host,
		log:            opts.Logger,
		now:            opts.Now,
		newID:          opts.NewID,
		titlePrefix:    opts.TitlePrefix,
		toastWindow:    opts.ToastWindow,
		toastLimit:     opts.ToastLimit,
		persistTimeout: opts.PersistTimeout,
	}
	if s.host == nil {
		s.host = NoHost{}
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.titlePrefix == "" {
		s.titlePrefix = DefaultTitlePrefix
	}
	if s.toastWindow <= 0 {
		s.toastWindow = DefaultToastWindow
	}
	if s.toastLimit <= 0 {
		s.toastLimit = DefaultToastLimit
	}
	if s.persistTimeout <= 0 {
		s.persistTimeout = 2 * time.Second
	}

	if s.persister != nil {
		recs, err := s.persister.Load(ctx)
		if err != nil {
			s.log.Error("failed to load notifications", "key", s.persister.Key(), "err", err)
		} else {
			s.records = recs
			s.toasts = ActiveToasts(recs, s.now(), s.toastWindow, s.toastLimit)
		}
	}
	return s
}

// Add creates an unread notification, prepends it and persists the collection.
// When the host has granted permission a system notification is raised too.
func (s *Store) Add(title, message string, kind Kind) Record {
	s.mu.Lock()
	now := s.now()
	if len(s.records) > 0 && now.Before(s.records[0].CreatedAt) {
		now = s.records[0].CreatedAt
	}
	rec := Record{
		ID:        s.newID(),
		Title:     title,
		Message:   message,
		Kind:      kind,
		CreatedAt: now,
	}
	snap := s.commitLocked(Prepend(s.records, rec))
	s.mu.Unlock()

	s.persist(snap)
	s.publish(snap)

	if s.host.Supported() && s.host.Permission() == PermissionGranted {
		if err := s.host.Show(s.titlePrefix+": "+title, message); err != nil {
			s.log.Debug("host notification failed", "err", err)
		}
	}
	return rec
}

// MarkRead flags the record id as read. Unknown or already read ids are a no-op.
func (s *Store) MarkRead(id string) bool {
	s.mu.Lock()
	next, changed := MarkRead(s.records, id)
	if !changed {
		s.mu.Unlock()
		return false
	}
	snap := s.commitLocked(next)
	s.mu.Unlock()

	s.persist(snap)
	s.publish(snap)
	return true
}

// ClearAll empties the collection.
func (s *Store) ClearAll() {
	s.mu.Lock()
	snap := s.commitLocked(Clear())
	s.mu.Unlock()

	s.persist(snap)
	s.publish(snap)
}

// Notifications returns a copy of the collection, newest first.
func (s *Store) Notifications() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.records)
}

// Toasts returns the toast list derived at the last collection change.
func (s *Store) Toasts() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.toasts)
}

// Unread returns the number of unread records.
func (s *Store) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return UnreadCount(s.records)
}

// Snapshot returns the current notifications, toasts and unread count.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// RequestPermission asks the host for notification permission and reports
// whether it was granted. Unsupported hosts return false without asking.
func (s *Store) RequestPermission(ctx context.Context) bool {
	if !s.host.Supported() {
		return false
	}
	perm, err := s.host.RequestPermission(ctx)
	if err != nil {
		s.log.Debug("notification permission request failed", "err", err)
		return false
	}
	return perm == PermissionGranted
}

// Subscribe registers fn to receive a snapshot after every effective change.
// Snapshots arrive in change order and fn must not mutate the store
// synchronously. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// commitLocked installs next and recomputes the toast projection.
func (s *Store) commitLocked(next []Record) Snapshot {
	s.version++
	s.records = next
	s.toasts = ActiveToasts(next, s.now(), s.toastWindow, s.toastLimit)
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Notifications: clone(s.records),
		Toasts:        clone(s.toasts),
		Unread:        UnreadCount(s.records),
		version:       s.version,
	}
}

// persist saves snap unless a newer collection has already been written.
func (s *Store) persist(snap Snapshot) {
	if s.persister == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if snap.version <= s.savedVersion {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
	defer cancel()
	if err := s.persister.Save(ctx, snap.Notifications); err != nil {
		s.log.Warn("failed to persist notifications", "err", err)
		return
	}
	s.savedVersion = snap.version
}

// publish fans snap out unless a newer snapshot has already been delivered.
func (s *Store) publish(snap Snapshot) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if snap.version <= s.publishedVersion {
		return
	}
	s.publishedVersion = snap.version

	s.mu.Lock()
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

func clone(recs []Record) []Record {
	out := make([]Record, len(recs))
	copy(out, recs)
	return out
}
