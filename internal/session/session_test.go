package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suderio/dicer/internal/data"
	"github.com/suderio/dicer/internal/engine"
	"github.com/suderio/dicer/internal/parser"
	"github.com/suderio/dicer/internal/persistence"
)

func newTestSession(t *testing.T, opts ...Option) (*Session, *engine.Roller, *persistence.CampaignManager) {
	t.Helper()
	mgr := persistence.NewCampaignManager(t.TempDir())
	store, err := mgr.Create("test")
	require.NoError(t, err)

	roller := engine.NewRoller(1)
	s, err := NewSession(mgr.Loader("test"), store, engine.NewResolver(roller, nil), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, roller, mgr
}

func TestSessionRollRecordsEventAndPlayer(t *testing.T) {
	s, roller, mgr := newTestSession(t)
	roller.Force(2, 5, 1)

	evt, err := s.Roll("alice", "3d6+")
	require.NoError(t, err)
	assert.Equal(t, "3d6+ : 3d6{2, 5, 1}+(8) => 8", evt.Text)
	assert.Equal(t, "alice", evt.Player)

	assert.Equal(t, 1, s.State().Players["alice"].Rolls)

	saved, err := mgr.Loader("test").LoadPlayer("alice")
	require.NoError(t, err)
	require.Contains(t, saved.Repartitions, 6)
	assert.Equal(t, []int{2, 5, 1}, saved.Repartitions[6].History)
}

func TestSessionReplaysLog(t *testing.T) {
	mgr := persistence.NewCampaignManager(t.TempDir())
	store, err := mgr.Create("test")
	require.NoError(t, err)
	s, err := NewSession(mgr.Loader("test"), store, engine.NewResolver(engine.NewRoller(1), nil))
	require.NoError(t, err)

	_, err = s.Roll("alice", "1d20")
	require.NoError(t, err)
	_, err = s.SetStat("alice", "dex", 3)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	store, err = mgr.Load("test")
	require.NoError(t, err)
	s, err = NewSession(mgr.Loader("test"), store, engine.NewResolver(engine.NewRoller(1), nil))
	require.NoError(t, err)
	defer s.Close()

	alice := s.State().Players["alice"]
	require.NotNil(t, alice)
	assert.Equal(t, 1, alice.Rolls)
	assert.Equal(t, 3.0, alice.Stats["dex"])

	p, err := s.Player("alice")
	require.NoError(t, err)
	assert.Equal(t, 3.0, p.Stats["dex"])
}

func TestSessionResolutionErrorKeepsRepartitions(t *testing.T) {
	s, roller, mgr := newTestSession(t)
	roller.Force(4)

	_, err := s.Roll("alice", "1d6 + $missing")
	var stat *parser.UnresolvedStat
	require.ErrorAs(t, err, &stat)

	saved, err := mgr.Loader("test").LoadPlayer("alice")
	require.NoError(t, err)
	require.Contains(t, saved.Repartitions, 6)
	assert.Equal(t, []int{4}, saved.Repartitions[6].History)
	assert.Nil(t, s.State().Players["alice"])
}

func TestSessionParseErrorTouchesNothing(t *testing.T) {
	s, _, _ := newTestSession(t)

	_, err := s.Roll("alice", "(3+4)D4")
	var perr *parser.ParseError
	require.ErrorAs(t, err, &perr)

	p, err := s.Player("alice")
	require.NoError(t, err)
	assert.Empty(t, p.Repartitions)
}

func TestSessionRejectsInvalidPlayerNames(t *testing.T) {
	s, _, _ := newTestSession(t)
	_, err := s.Roll("../etc", "1d6")
	assert.ErrorIs(t, err, ErrInvalidPlayerName)
}

func TestSessionCheck(t *testing.T) {
	s, roller, _ := newTestSession(t)
	_, err := s.SetStat("alice", "$dex", 3)
	require.NoError(t, err)

	roller.Force(12)
	out, err := s.Check("alice", "roll('1d20') + stats.dex >= 15.0")
	require.NoError(t, err)
	assert.Equal(t, true, out)
	assert.Equal(t, 1, s.State().Players["alice"].Rolls)

	_, err = s.Check("alice", "roll('3d6') > 2.0")
	assert.Error(t, err)
}

func TestSessionExecute(t *testing.T) {
	s, roller, _ := newTestSession(t, WithDefaultPlayer("alice"), WithLimits(5, 0))

	out, err := s.Execute("help")
	require.NoError(t, err)
	assert.Equal(t, HelpText, out)

	roller.Force(3, 4)
	out, err = s.Execute("2d6+ + 1")
	require.NoError(t, err)
	assert.Equal(t, "alice rolled 2d6++1 : 2d6{3, 4}+(7) + 1 => 8", out)

	roller.Force(6)
	out, err = s.Execute("by: bob 1d6")
	require.NoError(t, err)
	assert.Equal(t, "bob rolled 1d6 : 1d6{6} => 6", out)

	_, err = s.Execute("6d6")
	assert.ErrorContains(t, err, "between 1 and 5")

	out, err = s.Execute("set str 14")
	require.NoError(t, err)
	assert.Equal(t, "alice now has $str = 14", out)

	out, err = s.Execute("stats")
	require.NoError(t, err)
	assert.Equal(t, "$str = 14", out)

	out, err = s.Execute("weights 6")
	require.NoError(t, err)
	assert.Equal(t, "alice d6 weights [6 6 4 3 6 6] (total 31)", out)

	out, err = s.Execute("history")
	require.NoError(t, err)
	assert.Equal(t, "2d6++1 : 2d6{3, 4}+(7) + 1 => 8", out)

	out, err = s.Execute("history by: carol")
	require.NoError(t, err)
	assert.Equal(t, "carol has not rolled yet", out)

	out, err = s.Execute("dice")
	require.NoError(t, err)
	assert.Contains(t, out, "Force: Force dice [Weak, Strong, Unpredictable]")

	_, err = s.Execute("set str")
	assert.Error(t, err)
	_, err = s.Execute("weights x")
	assert.Error(t, err)
}

func TestSessionWeightsDefaultsForUnrolledFaces(t *testing.T) {
	s, _, _ := newTestSession(t)
	rep, err := s.Weights("alice", 4)
	require.NoError(t, err)
	assert.Equal(t, []uint32{4, 4, 4, 4}, rep.Weights)
	assert.Equal(t, uint64(16), rep.Total())

	p, err := s.Player("alice")
	require.NoError(t, err)
	assert.Empty(t, p.Repartitions)

	_, err = s.Weights("alice", 1)
	assert.Error(t, err)
}

var _ Store = (*persistence.Store)(nil)

func TestNewSessionFailsOnBrokenGame(t *testing.T) {
	dir := t.TempDir()
	mgr := persistence.NewCampaignManager(dir)
	store, err := mgr.Create("test")
	require.NoError(t, err)
	defer store.Close()

	broken := "dice:\n  - name: Empty\n    description: none\n    faces: []\n"
	require.NoError(t, os.WriteFile(filepath.Join(mgr.TablePath("test"), data.GameFile), []byte(broken), 0644))
	_, err = NewSession(mgr.Loader("test"), store, engine.NewResolver(engine.NewRoller(1), nil))
	assert.Error(t, err)
}

func TestNewSessionRejectsSingleFaceDice(t *testing.T) {
	mgr := persistence.NewCampaignManager(t.TempDir())
	store, err := mgr.Create("test")
	require.NoError(t, err)
	defer store.Close()

	coin := "dice:\n  - name: Coin\n    description: one sided\n    faces: [Only]\n"
	require.NoError(t, os.WriteFile(filepath.Join(mgr.TablePath("test"), data.GameFile), []byte(coin), 0644))
	_, err = NewSession(mgr.Loader("test"), store, engine.NewResolver(engine.NewRoller(1), nil))
	assert.ErrorIs(t, err, data.ErrInvalidNamedDice)
}

func TestSessionWeightsAreBoundedByMaxFaces(t *testing.T) {
	s, _, _ := newTestSession(t)

	_, err := s.Weights("alice", 1001)
	var faces *parser.DiceFacesOutOfRange
	require.ErrorAs(t, err, &faces)
	assert.Equal(t, parser.MaximumDiceFaces, faces.Max)

	_, err = s.Execute("weights 20000000")
	assert.ErrorContains(t, err, "between 2 and 1000")

	limited, _, _ := newTestSession(t, WithLimits(0, 20))
	_, err = limited.Weights("alice", 21)
	require.ErrorAs(t, err, &faces)
	assert.Equal(t, 20, faces.Max)
	_, err = limited.Weights("alice", 20)
	assert.NoError(t, err)
}

func TestSessionDivisionByZero(t *testing.T) {
	s, roller, mgr := newTestSession(t)
	roller.Force(5)

	_, err := s.Roll("alice", "1d6 / 0")
	assert.ErrorIs(t, err, parser.ErrUndefinedResult)
	assert.Nil(t, s.State().Players["alice"])

	saved, err := mgr.Loader("test").LoadPlayer("alice")
	require.NoError(t, err)
	require.Contains(t, saved.Repartitions, 6)
	assert.Equal(t, []int{5}, saved.Repartitions[6].History)

	_, err = s.Execute("0/0")
	assert.ErrorContains(t, err, "no numeric result")

	roller.Force(2)
	out, err := s.Execute("1d6 / 2")
	require.NoError(t, err)
	assert.Equal(t, "GM rolled 1d6/2 : 1d6{2} / 2 => 1", out)
}

func TestSessionRejectsNonFiniteStats(t *testing.T) {
	s, _, _ := newTestSession(t)
	_, err := s.Execute("set str NaN")
	assert.Error(t, err)
	_, err = s.Execute("set str +Inf")
	assert.Error(t, err)

	p, err := s.Player("GM")
	require.NoError(t, err)
	assert.Empty(t, p.Stats)
}
