package trophy

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"backend-trailquest/internal/activity"
)

// AwardNotifier receives newly earned awards, e.g. for pushing to connected
// clients. A nil notifier disables notification.
type AwardNotifier interface {
	BroadcastAward(userID string, payload []byte)
}

// Evaluator runs every active, not-yet-earned trophy of a user through its
// checker after each recorded activity. Evaluation per user is serialized so
// two activities processed in parallel cannot both observe "not yet earned";
// the store's unique constraint backstops awards across processes.
type Evaluator struct {
	registry *Registry
	store    *Store
	notifier AwardNotifier

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

func NewEvaluator(registry *Registry, store *Store, notifier AwardNotifier) *Evaluator {
	return &Evaluator{
		registry:  registry,
		store:     store,
		notifier:  notifier,
		userLocks: map[string]*sync.Mutex{},
	}
}

// ActivityRecorded evaluates all applicable trophies. Failures here are
// logged and swallowed: the activity is already committed and achievement
// evaluation must never undo or fail it.
func (e *Evaluator) ActivityRecorded(ctx context.Context, act activity.Activity) {
	lock := e.userLock(act.UserID)
	lock.Lock()
	defer lock.Unlock()

	user, err := e.store.GetUser(ctx, act.UserID)
	if err != nil {
		log.Printf("trophy evaluation: load user %s: %v", act.UserID, err)
		user = User{ID: act.UserID}
	}

	trophies, err := e.store.ActiveTrophies(ctx)
	if err != nil {
		log.Printf("trophy evaluation: load trophies: %v", err)
		return
	}

	for _, t := range trophies {
		checker, ok := e.registry.For(t.Kind)
		if !ok {
			log.Printf("trophy evaluation: no checker for kind %q (trophy %s)", t.Kind, t.Code)
			continue
		}

		earned, err := e.store.HasAward(ctx, act.UserID, t.ID)
		if err != nil {
			log.Printf("trophy evaluation: award lookup for %s: %v", t.Code, err)
			continue
		}
		if earned {
			continue
		}

		if !checker.CheckCriteria(ctx, user, act, t) {
			continue
		}

		award, inserted, err := e.store.InsertAward(ctx, Award{
			UserID:     act.UserID,
			TrophyID:   t.ID,
			ActivityID: act.ID,
		})
		if err != nil {
			log.Printf("trophy evaluation: insert award for %s: %v", t.Code, err)
			continue
		}
		if !inserted {
			continue
		}

		if e.notifier != nil {
			payload, _ := json.Marshal(struct {
				Trophy Trophy `json:"trophy"`
				Award  Award  `json:"award"`
			}{t, award})
			e.notifier.BroadcastAward(act.UserID, payload)
		}
	}
}

func (e *Evaluator) userLock(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.userLocks[userID] = lock
	}
	return lock
}
