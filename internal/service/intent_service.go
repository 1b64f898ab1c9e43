package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-scheduler-be/internal/pkg/logger"
	"ai-scheduler-be/internal/repository/contract"
	"ai-scheduler-be/pkg/ai/fallback"
	"ai-scheduler-be/pkg/contactimport"
	"ai-scheduler-be/pkg/dispatch"
	"ai-scheduler-be/pkg/intent"
	"ai-scheduler-be/pkg/intent/classifier"
	"ai-scheduler-be/pkg/intent/extract"
	"ai-scheduler-be/pkg/pending"

	"github.com/google/uuid"
)

var (
	ErrTurnSuperseded  = errors.New("intent: turn superseded by a newer message")
	ErrMissingIdentity = errors.New("intent: user id or thread id is required")
)

type ResolveRequest struct {
	UserID   string
	ThreadID string
	Text     string
	History  []classifier.Turn
}

type ResolveResponse struct {
	Turn             uint64
	Result           *intent.Result
	Pending          *pending.State // active record after this message
	ImportedContacts int
	Dispatched       bool
}

type IIntentService interface {
	Resolve(ctx context.Context, req ResolveRequest) (*ResolveResponse, error)
	GetPending(ctx context.Context, userID, threadID string) (*pending.State, error)
	ClearPending(ctx context.Context, userID, threadID string) error
}

// PendingTTL is how long a stamped record stays answerable
type PendingTTL struct {
	Confirmation time.Duration
	Selection    time.Duration
}

func DefaultPendingTTL() PendingTTL {
	return PendingTTL{Confirmation: 10 * time.Minute, Selection: 30 * time.Minute}
}

func (t PendingTTL) For(kind pending.Kind) time.Duration {
	if kind.IsConfirmation() {
		return t.Confirmation
	}
	return t.Selection
}

type IntentServiceDeps struct {
	Chain      *classifier.Chain
	Store      pending.Store
	Router     *fallback.Router // nil disables the model fallback
	Contacts   contract.ContactRepository
	Dispatcher dispatch.Dispatcher
	TTL        PendingTTL
	Logger     logger.ILogger
}

type intentService struct {
	chain      *classifier.Chain
	store      pending.Store
	router     *fallback.Router
	contacts   contract.ContactRepository
	dispatcher dispatch.Dispatcher
	ttl        PendingTTL
	log        logger.ILogger
	gate       *threadGate
	now        func() time.Time
	newToken   func() string
}

func NewIntentService(deps IntentServiceDeps) IIntentService {
	if deps.Chain == nil {
		deps.Chain = classifier.NewDefault()
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = dispatch.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	if deps.TTL == (PendingTTL{}) {
		deps.TTL = DefaultPendingTTL()
	}
	return &intentService{
		chain:      deps.Chain,
		store:      deps.Store,
		router:     deps.Router,
		contacts:   deps.Contacts,
		dispatcher: deps.Dispatcher,
		ttl:        deps.TTL,
		log:        deps.Logger,
		gate:       newThreadGate(),
		now:        time.Now,
		newToken:   uuid.NewString,
	}
}

// slots names the thread key and the user's global key for a request
type slots struct {
	thread string
	global string
}

func slotsFor(userID, threadID string) (slots, error) {
	s := slots{thread: threadID}
	if userID != "" {
		s.global = pending.GlobalThreadID(userID)
	}
	if s.thread == "" {
		if s.global == "" {
			return s, ErrMissingIdentity
		}
		s.thread = s.global
	}
	return s, nil
}

func (s *intentService) read(ctx context.Context, key string) (*pending.State, error) {
	if key == "" {
		return nil, nil
	}
	state, found, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read pending %s: %w", key, err)
	}
	if !found {
		return nil, nil
	}
	return state, nil
}

func (s *intentService) Resolve(ctx context.Context, req ResolveRequest) (*ResolveResponse, error) {
	keys, err := slotsFor(req.UserID, req.ThreadID)
	if err != nil {
		return nil, err
	}

	turn, leave := s.gate.enter(keys.thread)
	defer leave()

	now := s.now()

	threadState, err := s.read(ctx, keys.thread)
	if err != nil {
		return nil, err
	}
	var globalState *pending.State
	if keys.global != keys.thread {
		if globalState, err = s.read(ctx, keys.global); err != nil {
			return nil, err
		}
	}

	var directory []extract.Contact
	if s.contacts != nil && req.UserID != "" {
		if directory, err = s.contacts.FindAllByUser(ctx, req.UserID); err != nil {
			return nil, fmt.Errorf("load contacts: %w", err)
		}
	}

	cctx := classifier.Context{
		ThreadID:      req.ThreadID,
		UserID:        req.UserID,
		ThreadPending: threadState,
		GlobalPending: globalState,
		Now:           now,
		Contacts:      directory,
		History:       req.History,
	}
	if req.ThreadID == "" {
		// no thread selected: the global slot is the only slot
		cctx.ThreadPending, cctx.GlobalPending = nil, threadState
	}

	res, classifierName := s.chain.ClassifyTrace(req.Text, cctx)

	if s.router.ShouldInvoke(res, cctx) {
		aiRes, aiErr := s.router.Resolve(ctx, req.Text, cctx, res)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrTurnSuperseded, ctx.Err())
		}
		if s.gate.superseded(keys.thread, turn) {
			s.log.Info("INTENT", "Discarding model result for superseded turn", map[string]interface{}{
				"thread_id": keys.thread,
				"turn":      turn,
			})
			return nil, ErrTurnSuperseded
		}
		if aiErr != nil {
			s.log.Debug("INTENT", "Model result not used", map[string]interface{}{
				"thread_id": keys.thread,
				"error":     aiErr.Error(),
			})
		}
		res, classifierName = aiRes, "ai_fallback"
	}

	resp := &ResolveResponse{Turn: turn, Result: res}
	held := map[string]*pending.State{keys.thread: threadState}
	if keys.global != keys.thread {
		held[keys.global] = globalState
	}

	consumed, err := s.apply(ctx, req, keys, res, held, now, resp)
	if err != nil {
		return nil, err
	}
	if keys.global != keys.thread {
		resp.Pending = pending.Effective(held[keys.thread], held[keys.global], now)
	} else {
		resp.Pending = pending.Effective(nil, held[keys.thread], now)
	}

	s.log.Info("INTENT", "Resolved", map[string]interface{}{
		"thread_id":  keys.thread,
		"turn":       turn,
		"intent":     string(res.Intent),
		"classifier": classifierName,
		"source":     string(res.Source),
		"confidence": res.Confidence,
	})

	if dispatch.ShouldDispatch(res) {
		env := dispatch.Envelope{ThreadID: req.ThreadID, UserID: req.UserID, Turn: turn, Result: res, Confirmed: consumed}
		if err := s.dispatcher.Dispatch(ctx, env); err != nil {
			// the pending write stands
			s.log.Error("INTENT", "Dispatch failed", map[string]interface{}{
				"intent": string(res.Intent),
				"error":  err.Error(),
			})
		} else {
			resp.Dispatched = true
		}
	}
	return resp, nil
}

// apply performs the single pending write res asks for and returns the
// record a confirmation consumed
func (s *intentService) apply(ctx context.Context, req ResolveRequest, keys slots, res *intent.Result, held map[string]*pending.State, now time.Time, resp *ResolveResponse) (*pending.State, error) {
	target := res.PendingThread
	if target == "" {
		target = keys.thread
	}

	switch {
	case res.ConsumeToken != "":
		consumed, err := s.store.Consume(ctx, target, res.ConsumeToken)
		if err != nil {
			s.log.Warn("PENDING", "Consume refused", map[string]interface{}{
				"thread_id": target,
				"intent":    string(res.Intent),
				"error":     err.Error(),
			})
			return nil, fmt.Errorf("consume pending %s: %w", target, err)
		}
		held[target] = nil
		return consumed, s.commitImport(ctx, req.UserID, res, consumed, resp)

	case res.ClearPending:
		if err := s.store.Clear(ctx, target); err != nil {
			return nil, fmt.Errorf("clear pending %s: %w", target, err)
		}
		held[target] = nil

	case res.NextPending != nil:
		next := s.stamp(res.NextPending, keys, now)
		if err := s.store.Put(ctx, next); err != nil {
			return nil, fmt.Errorf("put pending %s: %w", next.ThreadID, err)
		}
		res.NextPending = next
		held[next.ThreadID] = next
	}
	return nil, nil
}

func (s *intentService) stamp(next *pending.State, keys slots, now time.Time) *pending.State {
	stamped := next.Clone()
	if stamped.ThreadID == "" {
		stamped.ThreadID = keys.thread
	}
	stamped.Token = s.newToken()
	stamped.CreatedAt = now
	stamped.ExpiresAt = now.Add(s.ttl.For(stamped.Kind()))
	return stamped
}

func (s *intentService) commitImport(ctx context.Context, userID string, res *intent.Result, consumed *pending.State, resp *ResolveResponse) error {
	var skipAmbiguous bool
	switch res.Intent {
	case intent.ContactImportConfirm:
	case intent.ContactImportSkipAmbiguous:
		skipAmbiguous = true
	default:
		return nil
	}
	if s.contacts == nil {
		return contactimport.ErrNoWriter
	}
	committer := contactimport.NewCommitter(contactWriter{repo: s.contacts, userID: userID}, s.log)
	batch, err := committer.Commit(ctx, consumed, skipAmbiguous)
	if err != nil {
		return err
	}
	resp.ImportedContacts = len(batch)
	return nil
}

func (s *intentService) GetPending(ctx context.Context, userID, threadID string) (*pending.State, error) {
	keys, err := slotsFor(userID, threadID)
	if err != nil {
		return nil, err
	}
	threadState, err := s.read(ctx, keys.thread)
	if err != nil {
		return nil, err
	}
	var globalState *pending.State
	if keys.global != keys.thread {
		if globalState, err = s.read(ctx, keys.global); err != nil {
			return nil, err
		}
	}
	active := pending.Effective(threadState, globalState, s.now())
	if active == nil {
		return nil, pending.ErrNotFound
	}
	return active, nil
}

func (s *intentService) ClearPending(ctx context.Context, userID, threadID string) error {
	keys, err := slotsFor(userID, threadID)
	if err != nil {
		return err
	}
	_, leave := s.gate.enter(keys.thread)
	defer leave()
	return s.store.Clear(ctx, keys.thread)
}

// contactWriter scopes the repository to one user for a single commit
type contactWriter struct {
	repo   contract.ContactRepository
	userID string
}

func (w contactWriter) WriteContacts(ctx context.Context, batch []contactimport.Write) error {
	return w.repo.ApplyBatch(ctx, w.userID, batch)
}
