package trophy

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"backend-trailquest/internal/activity"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

type fakeNotifier struct {
	userIDs  []string
	payloads [][]byte
}

func (f *fakeNotifier) BroadcastAward(userID string, payload []byte) {
	f.userIDs = append(f.userIDs, userID)
	f.payloads = append(f.payloads, payload)
}

func expectUserAndTrophies(mock pgxmock.PgxPoolIface, criteria string) {
	mock.ExpectQuery(`SELECT id, birth_date FROM users`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "birth_date"}).AddRow("user-1", nil))

	mock.ExpectQuery(`SELECT id, code, kind, name, description`).
		WillReturnRows(pgxmock.NewRows(trophyColumns()).
			AddRow("t-1", "dist-1k", KindDistance, "First K", "", "", true, []byte(criteria),
				nil, nil, 0.0, time.Time{}, time.Time{}, time.Now()))
}

func TestEvaluatorAwardsAndNotifies(t *testing.T) {
	mock, store := newMockStore(t)
	registry, err := NewDefaultRegistry(&fakeHistory{total: 1500})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	notifier := &fakeNotifier{}
	eval := NewEvaluator(registry, store, notifier)

	expectUserAndTrophies(mock, `{"target_distance_m":1000}`)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-1", "t-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO trophy_awards`).
		WithArgs("user-1", "t-1", "a-1").
		WillReturnRows(pgxmock.NewRows([]string{"awarded_at"}).AddRow(time.Now()))

	eval.ActivityRecorded(context.Background(), activity.Activity{ID: "a-1", UserID: "user-1"})

	if len(notifier.payloads) != 1 || notifier.userIDs[0] != "user-1" {
		t.Fatalf("expected one notification, got %d", len(notifier.payloads))
	}
	var event struct {
		Trophy Trophy `json:"trophy"`
		Award  Award  `json:"award"`
	}
	if err := json.Unmarshal(notifier.payloads[0], &event); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if event.Trophy.Code != "dist-1k" || event.Award.ActivityID != "a-1" {
		t.Fatalf("unexpected event: %+v", event)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEvaluatorSkipsEarnedTrophy(t *testing.T) {
	mock, store := newMockStore(t)
	registry, err := NewDefaultRegistry(&fakeHistory{total: 1500})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	notifier := &fakeNotifier{}
	eval := NewEvaluator(registry, store, notifier)

	expectUserAndTrophies(mock, `{"target_distance_m":1000}`)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-1", "t-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	eval.ActivityRecorded(context.Background(), activity.Activity{ID: "a-1", UserID: "user-1"})

	if len(notifier.payloads) != 0 {
		t.Fatalf("earned trophies must not notify again")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEvaluatorSkipsUnmetCriteria(t *testing.T) {
	mock, store := newMockStore(t)
	registry, err := NewDefaultRegistry(&fakeHistory{total: 500})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	notifier := &fakeNotifier{}
	eval := NewEvaluator(registry, store, notifier)

	expectUserAndTrophies(mock, `{"target_distance_m":1000}`)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-1", "t-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	eval.ActivityRecorded(context.Background(), activity.Activity{ID: "a-1", UserID: "user-1"})

	if len(notifier.payloads) != 0 {
		t.Fatalf("unmet criteria must not award")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEvaluatorConcurrentDuplicateResolvesSilently(t *testing.T) {
	mock, store := newMockStore(t)
	registry, err := NewDefaultRegistry(&fakeHistory{total: 1500})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	notifier := &fakeNotifier{}
	eval := NewEvaluator(registry, store, notifier)

	// another process won the insert race between HasAward and InsertAward
	expectUserAndTrophies(mock, `{"target_distance_m":1000}`)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("user-1", "t-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO trophy_awards`).
		WithArgs("user-1", "t-1", "a-1").
		WillReturnError(pgx.ErrNoRows)

	eval.ActivityRecorded(context.Background(), activity.Activity{ID: "a-1", UserID: "user-1"})

	if len(notifier.payloads) != 0 {
		t.Fatalf("a lost insert race must not notify")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
