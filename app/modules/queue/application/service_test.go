package queueservice

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
	queuedb "github.com/Black-And-White-Club/antrian/app/modules/queue/infrastructure/repositories"
	"github.com/Black-And-White-Club/antrian/pkg/events"
	"github.com/Black-And-White-Club/antrian/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

const testUser queuedomain.UserID = 42

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func testEnv() queuedomain.Env {
	var n uint32
	return queuedomain.Env{
		NewID: func() uuid.UUID {
			n++
			var id uuid.UUID
			id[0] = 0xbb
			binary.BigEndian.PutUint32(id[12:], n)
			return id
		},
		Now: func() time.Time { return testNow },
	}
}

// row builds a stored round. Labels starting with "!" are fast-track.
func row(id int64, seq int, status queuedomain.Status, labels ...string) *queuedb.Round {
	r := &queuedb.Round{
		ID:        id,
		UserID:    int64(testUser),
		Sequence:  seq,
		Status:    string(status),
		CreatedAt: testNow.Add(-time.Hour),
	}
	if status == queuedomain.StatusArchived {
		at := testNow.Add(-24 * time.Hour)
		r.ArchivedAt = &at
	}
	for i, l := range labels {
		r.Entries = append(r.Entries, &queuedb.Entry{
			ID:        uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%d-%d", id, i))),
			RoundID:   id,
			Position:  i,
			Label:     strings.TrimPrefix(l, "!"),
			FastTrack: strings.HasPrefix(l, "!"),
			CreatedAt: testNow.Add(-time.Hour),
		})
	}
	return r
}

func newTestService(repo *FakeQueueRepo, settings SettingsReader, pub *FakePublisher, cfg Config) *QueueService {
	return NewQueueService(
		repo,
		settings,
		pub,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
		cfg,
		WithEnv(testEnv()),
	)
}

func labels(rounds []queuedomain.Round) [][]string {
	out := make([][]string, len(rounds))
	for i, r := range rounds {
		for _, e := range r.Entries {
			out[i] = append(out[i], e.Label)
		}
	}
	return out
}

func regular(labels ...string) []queuedomain.Request {
	out := make([]queuedomain.Request, len(labels))
	for i, l := range labels {
		out[i] = queuedomain.Request{Label: l}
	}
	return out
}

func TestSubmitBatch(t *testing.T) {
	tests := []struct {
		name       string
		seed       []*queuedb.Round
		settings   queuedomain.Settings
		setupRepo  func(*FakeQueueRepo)
		requests   []queuedomain.Request
		wantLayout [][]string
		wantErr    error
		wantTopics []string
	}{
		{
			name:       "fills an empty queue",
			requests:   regular("G1", "G2", "G3", "G4", "G5"),
			wantLayout: [][]string{{"G1", "G2", "G3", "G4"}, {"G5"}},
			wantTopics: []string{events.QueueEntriesAssignedV1},
		},
		{
			name:       "fast track goes first",
			seed:       []*queuedb.Round{row(1, 1, queuedomain.StatusPending, "G1", "G2", "G3")},
			settings:   queuedomain.Settings{FastTrackEnabled: true},
			requests:   []queuedomain.Request{{Label: "F1", FastTrack: true}},
			wantLayout: [][]string{{"F1", "G1", "G2", "G3"}},
			wantTopics: []string{events.QueueEntriesAssignedV1},
		},
		{
			name:     "fast track disabled",
			settings: queuedomain.Settings{FastTrackEnabled: false},
			requests: []queuedomain.Request{{Label: "F1", FastTrack: true}},
			wantErr:  queuedomain.ErrFastTrackDisabled,
		},
		{
			name:    "empty batch",
			wantErr: queuedomain.ErrInvalidRequest,
		},
		{
			name:       "zero games per round clamps to one",
			settings:   queuedomain.Settings{GamesPerRound: new(int)},
			requests:   regular("G1", "G2"),
			wantLayout: [][]string{{"G1"}, {"G2"}},
			wantTopics: []string{events.QueueEntriesAssignedV1},
		},
		{
			name: "storage failure rolls back",
			setupRepo: func(f *FakeQueueRepo) {
				f.SaveRoundFunc = func(ctx context.Context, db bun.IDB, round *queuedb.Round) error {
					return errors.New("connection reset")
				}
			},
			requests: regular("G1"),
			wantErr:  queuedomain.ErrTransientStorage,
		},
		{
			name: "lock failure",
			setupRepo: func(f *FakeQueueRepo) {
				f.LockUserFunc = func(ctx context.Context, db bun.IDB, userID int64) error {
					return errors.New("lock timeout")
				}
			},
			requests: regular("G1"),
			wantErr:  queuedomain.ErrTransientStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeQueueRepo(tt.seed...)
			if tt.setupRepo != nil {
				tt.setupRepo(repo)
			}
			pub := &FakePublisher{}
			svc := newTestService(repo, &FakeSettings{Settings: tt.settings}, pub, Config{})

			out, err := svc.SubmitBatch(context.Background(), testUser, tt.requests)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, out)
				assert.Empty(t, pub.Topics())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLayout, labels(out.Snapshot.Pending))
			assert.Equal(t, tt.wantTopics, pub.Topics())
			for _, r := range out.Snapshot.Pending {
				assert.False(t, r.ID.IsProvisional(), "round %s kept a provisional id", r.ID)
			}
		})
	}
}

func TestSubmitBatch_PersistsAndReloads(t *testing.T) {
	repo := NewFakeQueueRepo()
	svc := newTestService(repo, &FakeSettings{}, &FakePublisher{}, Config{DefaultCapacity: 2})
	ctx := context.Background()

	out, err := svc.SubmitBatch(ctx, testUser, regular("G1", "G2", "G3"))
	require.NoError(t, err)
	assert.Len(t, out.Added, 3)
	assert.Equal(t, []string{"LockUser", "LoadCurrentRound", "LoadRounds", "SaveRound", "SaveRound"}, repo.Trace())

	snap, err := svc.GetQueue(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"G1", "G2"}, {"G3"}}, labels(snap.Pending))
	assert.Equal(t, out.Snapshot.Pending[0].ID, snap.Pending[0].ID)
	assert.Equal(t, 1, snap.Pending[0].Sequence)
	assert.Equal(t, 2, snap.Pending[1].Sequence)
}

func TestSubmitBatch_SkipsUnchangedRounds(t *testing.T) {
	repo := NewFakeQueueRepo(
		row(1, 1, queuedomain.StatusPending, "G1", "G2", "G3", "G4"),
		row(2, 2, queuedomain.StatusPending, "G5"),
	)
	svc := newTestService(repo, &FakeSettings{}, &FakePublisher{}, Config{})

	_, err := svc.SubmitBatch(context.Background(), testUser, regular("G6"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2:pending"}, repo.Saves())
}

func TestSubmitBatch_PublishFailureIsLogged(t *testing.T) {
	pub := &FakePublisher{Err: errors.New("nats down")}
	svc := newTestService(NewFakeQueueRepo(), &FakeSettings{}, pub, Config{})

	_, err := svc.SubmitBatch(context.Background(), testUser, regular("G1"))
	require.NoError(t, err)
	assert.Equal(t, []string{events.QueueEntriesAssignedV1}, pub.Topics())
}

func TestImportBatch(t *testing.T) {
	repo := NewFakeQueueRepo()
	svc := newTestService(repo, &FakeSettings{Settings: queuedomain.Settings{FastTrackEnabled: true}}, &FakePublisher{}, Config{})
	ctx := context.Background()

	out, err := svc.ImportBatch(ctx, testUser, "games.csv", []byte("label,fast_track,count\nG1\nF1,yes\nG2,,2\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"F1", "G1", "G2"}, {"G2"}}, labels(out.Snapshot.Pending))

	_, err = svc.ImportBatch(ctx, testUser, "games.pdf", []byte("x"))
	assert.ErrorIs(t, err, queuedomain.ErrInvalidRequest)

	_, err = svc.ImportBatch(ctx, testUser, "games.csv", []byte(",,\n"))
	assert.ErrorIs(t, err, queuedomain.ErrInvalidRequest)
}

func TestMoveEntry(t *testing.T) {
	seed := func() *FakeQueueRepo {
		return NewFakeQueueRepo(
			row(1, 1, queuedomain.StatusPending, "G1", "G2"),
			row(2, 2, queuedomain.StatusPending, "G3"),
		)
	}
	ctx := context.Background()

	t.Run("raw move", func(t *testing.T) {
		repo := seed()
		pub := &FakePublisher{}
		svc := newTestService(repo, &FakeSettings{}, pub, Config{})

		snap, err := svc.MoveEntry(ctx, testUser, queuedomain.Move{
			SourceRound: queuedomain.DurableID(2), SourceIndex: 0,
			DestRound: queuedomain.DurableID(1), DestIndex: 0,
		}, false)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"G3", "G1", "G2"}, nil}, labels(snap.Pending))
		assert.Equal(t, []string{events.QueueEntryMovedV1}, pub.Topics())
	})

	t.Run("move then consolidate drops the empty round", func(t *testing.T) {
		repo := seed()
		svc := newTestService(repo, &FakeSettings{}, &FakePublisher{}, Config{})

		snap, err := svc.MoveEntry(ctx, testUser, queuedomain.Move{
			SourceRound: queuedomain.DurableID(2), SourceIndex: 0,
			DestRound: queuedomain.DurableID(1), DestIndex: 2,
		}, true)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"G1", "G2", "G3"}}, labels(snap.Pending))
		assert.Contains(t, repo.Trace(), "DeleteRound")
		_, ok := repo.Stored(2)
		assert.False(t, ok)
	})

	t.Run("auto consolidate from config", func(t *testing.T) {
		repo := seed()
		svc := newTestService(repo, &FakeSettings{}, &FakePublisher{}, Config{AutoConsolidate: true})

		snap, err := svc.MoveEntry(ctx, testUser, queuedomain.Move{
			SourceRound: queuedomain.DurableID(2), SourceIndex: 0,
			DestRound: queuedomain.DurableID(1), DestIndex: 0,
		}, false)
		require.NoError(t, err)
		assert.Len(t, snap.Pending, 1)
	})

	t.Run("unknown round", func(t *testing.T) {
		repo := seed()
		svc := newTestService(repo, &FakeSettings{}, &FakePublisher{}, Config{})

		_, err := svc.MoveEntry(ctx, testUser, queuedomain.Move{
			SourceRound: queuedomain.DurableID(9),
			DestRound:   queuedomain.DurableID(1),
		}, false)
		assert.ErrorIs(t, err, queuedomain.ErrRoundNotFound)
		assert.NotContains(t, repo.Trace(), "SaveRound")
	})
}

func TestConsolidateAndRebalance(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeQueueRepo(
		row(1, 1, queuedomain.StatusPending, "!F1", "G1"),
		row(2, 2, queuedomain.StatusPending, "!F2", "G2"),
	)
	pub := &FakePublisher{}
	settings := &FakeSettings{}
	svc := newTestService(repo, settings, pub, Config{})

	snap, err := svc.Consolidate(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"F1", "F2", "G1", "G2"}}, labels(snap.Pending))

	two := 2
	settings.Settings.GamesPerRound = &two
	snap, err = svc.Rebalance(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"F1", "F2"}, {"G1", "G2"}}, labels(snap.Pending))
	assert.Equal(t, []string{events.QueueConsolidatedV1, events.QueueConsolidatedV1}, pub.Topics())
}

func TestPromote(t *testing.T) {
	ctx := context.Background()

	t.Run("demotes before promoting", func(t *testing.T) {
		repo := NewFakeQueueRepo(
			row(1, 1, queuedomain.StatusCurrent, "G1"),
			row(2, 2, queuedomain.StatusPending, "G2"),
		)
		pub := &FakePublisher{}
		svc := newTestService(repo, &FakeSettings{}, pub, Config{})

		snap, err := svc.Promote(ctx, testUser, queuedomain.DurableID(2))
		require.NoError(t, err)
		require.NotNil(t, snap.Current)
		assert.Equal(t, queuedomain.DurableID(2), snap.Current.ID)
		assert.Equal(t, []string{"1:pending", "2:current"}, repo.Saves())
		assert.Equal(t, []string{events.QueueRoundPromotedV1}, pub.Topics())
	})

	t.Run("archived round", func(t *testing.T) {
		repo := NewFakeQueueRepo(row(3, 1, queuedomain.StatusArchived, "G1"))
		svc := newTestService(repo, &FakeSettings{}, &FakePublisher{}, Config{})

		_, err := svc.Promote(ctx, testUser, queuedomain.DurableID(3))
		assert.ErrorIs(t, err, queuedomain.ErrRoundArchived)
	})

	t.Run("unknown round", func(t *testing.T) {
		svc := newTestService(NewFakeQueueRepo(), &FakeSettings{}, &FakePublisher{}, Config{})

		_, err := svc.Promote(ctx, testUser, queuedomain.DurableID(7))
		assert.ErrorIs(t, err, queuedomain.ErrRoundNotFound)

		_, err = svc.Promote(ctx, testUser, queuedomain.ProvisionalID(uuid.New()))
		assert.ErrorIs(t, err, queuedomain.ErrRoundNotFound)
	})
}

func TestClearCurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeQueueRepo(
		row(1, 1, queuedomain.StatusCurrent, "G1", "G2"),
		row(2, 2, queuedomain.StatusPending, "G3"),
	)
	pub := &FakePublisher{}
	svc := newTestService(repo, &FakeSettings{}, pub, Config{})

	res, err := svc.ClearCurrent(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, queuedomain.StatusArchived, res.Archived.Status)
	require.NotNil(t, res.Archived.ArchivedAt)
	assert.Equal(t, testNow, *res.Archived.ArchivedAt)
	assert.Nil(t, res.Snapshot.Current)
	assert.Equal(t, 1, res.Snapshot.Pending[0].Sequence)

	stored, ok := repo.Stored(1)
	require.True(t, ok)
	assert.Equal(t, string(queuedomain.StatusArchived), stored.Status)
	assert.Len(t, stored.Entries, 2)
	assert.Equal(t, "1:archived", repo.Saves()[0])

	_, err = svc.ClearCurrent(ctx, testUser)
	assert.ErrorIs(t, err, queuedomain.ErrNoCurrentRound)
	assert.Equal(t, []string{events.QueueRoundClearedV1}, pub.Topics())
}

func TestArchive(t *testing.T) {
	ctx := context.Background()
	older := row(4, 2, queuedomain.StatusArchived, "G4")
	longAgo := testNow.AddDate(0, -2, 0)
	older.ArchivedAt = &longAgo

	newRepo := func() *FakeQueueRepo {
		return NewFakeQueueRepo(
			row(1, 1, queuedomain.StatusPending, "G1"),
			row(3, 1, queuedomain.StatusArchived, "G3"),
			older,
		)
	}

	t.Run("list newest first", func(t *testing.T) {
		svc := newTestService(newRepo(), &FakeSettings{}, &FakePublisher{}, Config{})
		rounds, err := svc.ListArchived(ctx, testUser, "")
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"G3"}, {"G4"}}, labels(rounds))
	})

	t.Run("list since", func(t *testing.T) {
		svc := newTestService(newRepo(), &FakeSettings{}, &FakePublisher{}, Config{})
		rounds, err := svc.ListArchived(ctx, testUser, "2026-03-01")
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"G3"}}, labels(rounds))

		_, err = svc.ListArchived(ctx, testUser, "qwerty zxcv")
		assert.ErrorIs(t, err, queuedomain.ErrInvalidRequest)
	})

	t.Run("delete one", func(t *testing.T) {
		repo := newRepo()
		pub := &FakePublisher{}
		svc := newTestService(repo, &FakeSettings{}, pub, Config{})

		require.NoError(t, svc.DeleteArchived(ctx, testUser, queuedomain.DurableID(3)))
		_, ok := repo.Stored(3)
		assert.False(t, ok)
		assert.Equal(t, []string{events.QueueArchiveDeletedV1}, pub.Topics())

		assert.ErrorIs(t, svc.DeleteArchived(ctx, testUser, queuedomain.DurableID(1)), queuedomain.ErrRoundNotArchived)
		assert.ErrorIs(t, svc.DeleteArchived(ctx, testUser, queuedomain.DurableID(3)), queuedomain.ErrRoundNotFound)
		assert.ErrorIs(t, svc.DeleteArchived(ctx, 7, queuedomain.DurableID(4)), queuedomain.ErrRoundNotFound)
	})

	t.Run("delete all", func(t *testing.T) {
		repo := newRepo()
		svc := newTestService(repo, &FakeSettings{}, &FakePublisher{}, Config{})

		n, err := svc.DeleteAllArchived(ctx, testUser)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		_, ok := repo.Stored(1)
		assert.True(t, ok)
	})

	t.Run("export and chart", func(t *testing.T) {
		svc := newTestService(newRepo(), &FakeSettings{}, &FakePublisher{}, Config{})

		xlsx, err := svc.ExportArchive(ctx, testUser, "")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(xlsx), "PK"))

		png, err := svc.ArchiveChart(ctx, testUser, "")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(png), "\x89PNG"))
	})
}

func TestPurgeArchived(t *testing.T) {
	ctx := context.Background()
	old := row(5, 1, queuedomain.StatusArchived, "G5")
	longAgo := testNow.AddDate(-1, 0, 0)
	old.ArchivedAt = &longAgo

	t.Run("disabled", func(t *testing.T) {
		repo := NewFakeQueueRepo(old)
		svc := newTestService(repo, &FakeSettings{}, &FakePublisher{}, Config{})

		n, err := svc.PurgeArchived(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Empty(t, repo.Trace())
	})

	t.Run("removes rounds past retention", func(t *testing.T) {
		repo := NewFakeQueueRepo(old, row(6, 1, queuedomain.StatusArchived, "G6"))
		pub := &FakePublisher{}
		svc := newTestService(repo, &FakeSettings{}, pub, Config{ArchiveRetention: 30 * 24 * time.Hour})

		n, err := svc.PurgeArchived(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		_, ok := repo.Stored(6)
		assert.True(t, ok)
		assert.Equal(t, []string{events.QueueArchivePurgedV1}, pub.Topics())
	})
}

func TestGetPublicQueue(t *testing.T) {
	repo := NewFakeQueueRepo(row(1, 1, queuedomain.StatusCurrent, "G1"))
	settings := &FakeSettings{Users: map[string]int64{"ana": int64(testUser)}}
	svc := newTestService(repo, settings, &FakePublisher{}, Config{})

	snap, err := svc.GetPublicQueue(context.Background(), "ana")
	require.NoError(t, err)
	require.NotNil(t, snap.Current)
	assert.Equal(t, "G1", snap.Current.Entries[0].Label)
	assert.NotContains(t, repo.Trace(), "LockUser")

	_, err = svc.GetPublicQueue(context.Background(), "nobody")
	assert.ErrorIs(t, err, queuedomain.ErrNotFound)
}

func TestWithTelemetry_RecoversPanic(t *testing.T) {
	repo := NewFakeQueueRepo()
	repo.LoadRoundsFunc = func(ctx context.Context, db bun.IDB, userID int64) ([]*queuedb.Round, error) {
		panic("boom")
	}
	svc := newTestService(repo, &FakeSettings{}, &FakePublisher{}, Config{})

	_, err := svc.GetQueue(context.Background(), testUser)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in GetQueue")
	assert.Nil(t, queuedomain.KindOf(err), "a panic is not retryable")
}

func TestRun_OnlyStorageErrorsAreTransient(t *testing.T) {
	t.Run("repository error", func(t *testing.T) {
		repo := NewFakeQueueRepo()
		repo.LoadRoundsFunc = func(ctx context.Context, db bun.IDB, userID int64) ([]*queuedb.Round, error) {
			return nil, errors.New("connection reset")
		}
		svc := newTestService(repo, &FakeSettings{}, &FakePublisher{}, Config{})

		_, err := svc.GetQueue(context.Background(), testUser)
		assert.ErrorIs(t, err, queuedomain.ErrTransientStorage)
	})

	t.Run("settings error without a kind", func(t *testing.T) {
		settings := &FakeSettings{Err: errors.New("decode settings")}
		svc := newTestService(NewFakeQueueRepo(), settings, &FakePublisher{}, Config{})

		_, err := svc.SubmitBatch(context.Background(), testUser, regular("G1"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, queuedomain.ErrTransientStorage)
		assert.Nil(t, queuedomain.KindOf(err))
	})

	t.Run("not found keeps its kind", func(t *testing.T) {
		svc := newTestService(NewFakeQueueRepo(), &FakeSettings{}, &FakePublisher{}, Config{})

		_, err := svc.Promote(context.Background(), testUser, queuedomain.DurableID(999))
		assert.ErrorIs(t, err, queuedomain.ErrNotFound)
		assert.NotErrorIs(t, err, queuedomain.ErrTransientStorage)
	})
}

func TestMutations_LockBeforeReadingSettings(t *testing.T) {
	seed := func() *FakeQueueRepo {
		return NewFakeQueueRepo(
			row(1, 1, queuedomain.StatusPending, "G1", "G2"),
			row(2, 2, queuedomain.StatusPending, "G3"),
		)
	}
	tests := []struct {
		name string
		call func(svc *QueueService) error
	}{
		{name: "submit", call: func(svc *QueueService) error {
			_, err := svc.SubmitBatch(context.Background(), testUser, regular("G9"))
			return err
		}},
		{name: "move", call: func(svc *QueueService) error {
			_, err := svc.MoveEntry(context.Background(), testUser, queuedomain.Move{
				SourceRound: queuedomain.DurableID(2), SourceIndex: 0,
				DestRound: queuedomain.DurableID(1), DestIndex: 2,
			}, true)
			return err
		}},
		{name: "consolidate", call: func(svc *QueueService) error {
			_, err := svc.Consolidate(context.Background(), testUser)
			return err
		}},
		{name: "rebalance", call: func(svc *QueueService) error {
			_, err := svc.Rebalance(context.Background(), testUser)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := seed()
			settings := &FakeSettings{
				QueueSettingsFunc: func(context.Context, int64) (queuedomain.Settings, error) {
					repo.record("QueueSettings")
					return queuedomain.Settings{}, nil
				},
			}
			svc := newTestService(repo, settings, &FakePublisher{}, Config{})

			require.NoError(t, tt.call(svc))
			trace := repo.Trace()
			lock := slices.Index(trace, "LockUser")
			read := slices.Index(trace, "QueueSettings")
			require.NotEqual(t, -1, lock)
			require.NotEqual(t, -1, read)
			assert.Less(t, lock, read, "settings must be read under the queue lock")
		})
	}
}

func TestParseSince(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *time.Time
		wantErr bool
	}{
		{name: "empty", raw: "  "},
		{name: "rfc3339", raw: "2026-03-01T10:00:00Z", want: ptr(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))},
		{name: "date", raw: "2026-02-01", want: ptr(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))},
		{name: "gibberish", raw: "qwerty", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSince(tt.raw, testNow)
			if tt.wantErr {
				assert.ErrorIs(t, err, queuedomain.ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("natural language", func(t *testing.T) {
		got, err := parseSince("2 weeks ago", testNow)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.Before(testNow))
	})
}

func ptr[T any](v T) *T { return &v }
