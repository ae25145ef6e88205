package process

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	ratio      TickRatio
	ratioErr   error
	pids       []ProcessID
	listErr    error
	infos      map[ProcessID]TaskInfo
	paths      map[ProcessID]string
	pathErrs   map[ProcessID]error
	infoCalls  int
	ratioCalls int
}

func (f *fakeSource) Timebase() (TickRatio, error) {
	f.ratioCalls++
	return f.ratio, f.ratioErr
}

func (f *fakeSource) ListPIDs() ([]ProcessID, error) {
	return f.pids, f.listErr
}

func (f *fakeSource) TaskInfo(pid ProcessID) (TaskInfo, error) {
	f.infoCalls++
	info, ok := f.infos[pid]
	if !ok {
		return TaskInfo{}, ErrProcessGone
	}
	return info, nil
}

func (f *fakeSource) ExecutablePath(pid ProcessID) (string, error) {
	if err := f.pathErrs[pid]; err != nil {
		return "", err
	}
	path, ok := f.paths[pid]
	if !ok {
		return "", ErrNoExecutable
	}
	return path, nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		ratio: TickRatio{Numer: 125, Denom: 3},
		pids:  []ProcessID{200, 0, 1, 100, 300, 400, 500},
		infos: map[ProcessID]TaskInfo{
			1:   {ParentPID: 0, UID: 0, GID: 0},
			100: {UserTicks: 3_000_000_000, SystemTicks: 24, ResidentBytes: 4096, ParentPID: 1, UID: 0, GID: 0, StartEpochSeconds: 1700000000},
			200: {UserTicks: 48, SystemTicks: 3_000_000_000, ResidentBytes: 8192, ParentPID: 1, UID: 501, GID: 20, StartEpochSeconds: 1700000100},
			300: {ParentPID: 1},
			500: {ParentPID: 100},
		},
		paths: map[ProcessID]string{
			1:   "/sbin/launchd",
			100: "/bin/a",
			200: "/usr/bin/b",
			300: "",
		},
		pathErrs: map[ProcessID]error{
			500: errors.New("permission denied"),
		},
	}
}

func TestCollector_Collect(t *testing.T) {
	src := newFakeSource()
	snapshot := NewCollector(src).Collect()

	require.Len(t, snapshot, 2)

	assert.Equal(t, ProcessRecord{
		PID:               200,
		ExecutablePath:    "/usr/bin/b",
		CPUUserNanos:      2000,
		CPUSystemNanos:    125_000_000_000,
		ResidentBytes:     8192,
		ParentPID:         1,
		UID:               501,
		GID:               20,
		StartEpochSeconds: 1700000100,
	}, snapshot[0], "enumeration order is kept")

	assert.Equal(t, ProcessID(100), snapshot[1].PID)
	assert.Equal(t, uint64(125), snapshot[1].CPUUserSeconds())
	assert.Equal(t, uint64(0), snapshot[1].CPUSystemSeconds())
	assert.Equal(t, 1, src.ratioCalls, "timebase is fetched once per pass")
}

func TestCollector_Invariants(t *testing.T) {
	snapshot := NewCollector(newFakeSource()).Collect()

	for _, record := range snapshot {
		assert.NotZero(t, record.PID)
		assert.NotZero(t, record.ParentPID)
		assert.NotEmpty(t, record.ExecutablePath)
	}
}

func TestCollector_SkipsPIDZeroWithoutQuery(t *testing.T) {
	src := &fakeSource{
		ratio: IdentityRatio,
		pids:  []ProcessID{0},
		infos: map[ProcessID]TaskInfo{0: {ParentPID: 1}},
		paths: map[ProcessID]string{0: "/kernel"},
	}

	snapshot := NewCollector(src).Collect()

	assert.Empty(t, snapshot)
	assert.Zero(t, src.infoCalls)
}

func TestCollector_Idempotent(t *testing.T) {
	collector := NewCollector(newFakeSource())

	first := collector.Collect()
	second := collector.Collect()

	assert.Equal(t, first, second)
}

func TestCollector_ListFailure(t *testing.T) {
	src := newFakeSource()
	src.listErr = errors.New("listing failed")

	snapshot := NewCollector(src).Collect()

	assert.NotNil(t, snapshot)
	assert.Empty(t, snapshot)
}

func TestCollector_TimebaseFallback(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		src := newFakeSource()
		src.ratioErr = errors.New("no timebase")

		snapshot := NewCollector(src).Collect()

		require.Len(t, snapshot, 2)
		assert.Equal(t, uint64(3_000_000_000), snapshot[1].CPUUserNanos)
	})

	t.Run("zero denominator", func(t *testing.T) {
		src := newFakeSource()
		src.ratio = TickRatio{Numer: 125, Denom: 0}

		snapshot := NewCollector(src).Collect()

		require.Len(t, snapshot, 2)
		assert.Equal(t, uint64(48), snapshot[0].CPUUserNanos)
	})

	t.Run("zero numerator", func(t *testing.T) {
		src := newFakeSource()
		src.ratio = TickRatio{Numer: 0, Denom: 3}

		snapshot := NewCollector(src).Collect()

		require.Len(t, snapshot, 2)
		assert.Zero(t, snapshot[0].CPUUserNanos)
	})
}

func TestCollector_Record(t *testing.T) {
	collector := NewCollector(newFakeSource())
	ratio := TickRatio{Numer: 125, Denom: 3}

	tests := []struct {
		name string
		pid  ProcessID
		want error
	}{
		{"pid zero", 0, ErrNoParent},
		{"parent zero", 1, ErrNoParent},
		{"empty path", 300, ErrNoExecutable},
		{"gone", 400, ErrProcessGone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := collector.record(tt.pid, ratio)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("path error", func(t *testing.T) {
		_, err := collector.record(500, ratio)
		assert.EqualError(t, err, "permission denied")
	})

	t.Run("kept", func(t *testing.T) {
		record, err := collector.record(100, ratio)
		require.NoError(t, err)
		assert.Equal(t, uint64(125), record.CPUUserSeconds())
	})
}

func TestCollector_Predicate(t *testing.T) {
	keepRoot := func(r ProcessRecord) bool { return r.UID == 0 }

	snapshot := NewCollector(newFakeSource(), WithPredicate(keepRoot)).Collect()

	require.Len(t, snapshot, 1)
	assert.Equal(t, "/bin/a", snapshot[0].ExecutablePath)
}

func TestProcessRecord_Valid(t *testing.T) {
	valid := ProcessRecord{PID: 10, ParentPID: 1, ExecutablePath: "/bin/sh"}
	assert.True(t, valid.Valid())

	noPID := valid
	noPID.PID = 0
	assert.False(t, noPID.Valid())

	noParent := valid
	noParent.ParentPID = 0
	assert.False(t, noParent.Valid())

	noPath := valid
	noPath.ExecutablePath = ""
	assert.False(t, noPath.Valid())
}
