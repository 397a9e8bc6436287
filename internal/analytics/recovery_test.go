package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRecovery_BreakWithinGraceWindow(t *testing.T) {
	entries := []DayEntry{
		entry(3, doneTask(5)),
		entry(2, openTask(4)),
	}
	// Evaluated 30 hours after the broken day started.
	now := day(2).Add(30 * time.Hour)

	window := FindRecovery(entries, now, DefaultRecoveryGraceHours)

	require.NotNil(t, window)
	assert.Equal(t, day(2), window.BrokenDate)
	assert.Equal(t, 30, window.HoursSinceBreak)
	assert.True(t, window.Recoverable)
}

func TestFindRecovery_NothingToRecoverWhenLatestDayHasExecution(t *testing.T) {
	entries := []DayEntry{
		entry(2, openTask(4)),
		entry(1, doneTask(4)),
	}

	assert.Nil(t, FindRecovery(entries, day(0), DefaultRecoveryGraceHours))
}

func TestFindRecovery_PastGraceWindowIsPermanent(t *testing.T) {
	entries := []DayEntry{
		entry(4, openTask(4)),
	}

	assert.Nil(t, FindRecovery(entries, day(0), DefaultRecoveryGraceHours))
}

func TestFindRecovery_RecoveredDayNeverReturnedAgain(t *testing.T) {
	entries := []DayEntry{
		recoveredEntry(1),
	}
	now := day(1).Add(20 * time.Hour)

	assert.Nil(t, FindRecovery(entries, now, DefaultRecoveryGraceHours))

	// Idempotence: recomputing over identical input stays nil.
	assert.Nil(t, FindRecovery(entries, now, DefaultRecoveryGraceHours))
}

func TestQualifiesForRecovery(t *testing.T) {
	assert.True(t, QualifiesForRecovery(doneTask(6), 5))
	assert.True(t, QualifiesForRecovery(doneTask(5), 5))
	assert.False(t, QualifiesForRecovery(doneTask(4), 5))
	assert.False(t, QualifiesForRecovery(openTask(9), 5))
}

func TestRecover_TransitionsActiveOnly(t *testing.T) {
	granted := day(0).Add(10 * time.Hour)

	recovered := Recover(entry(2), granted)
	assert.Equal(t, StatusRecovered, recovered.Status)
	require.NotNil(t, recovered.RecoveryAttemptedAt)
	assert.Equal(t, granted, *recovered.RecoveryAttemptedAt)

	// Already recovered entries keep their original stamp.
	prior := recoveredEntry(3)
	again := Recover(prior, granted)
	assert.Equal(t, prior.RecoveryAttemptedAt, again.RecoveryAttemptedAt)

	missed := DayEntry{Date: day(5), Status: StatusMissed}
	assert.Equal(t, StatusMissed, Recover(missed, granted).Status)
}

func TestRecover_DoesNotMutateOriginal(t *testing.T) {
	original := entry(2)

	_ = Recover(original, day(0))

	assert.Equal(t, StatusActive, original.Status)
	assert.Nil(t, original.RecoveryAttemptedAt)
}

func TestRecoveryFlow_GrantRestoresStreak(t *testing.T) {
	// Broken yesterday, qualifying completion today repairs the run.
	entries := []DayEntry{
		entry(2, doneTask(4)),
		entry(1, openTask(3)),
	}
	now := day(0).Add(9 * time.Hour)

	window := FindRecovery(entries, now, DefaultRecoveryGraceHours)
	require.NotNil(t, window)
	assert.Equal(t, day(1), window.BrokenDate)

	entries[1] = Recover(entries[1], now)
	entries = append(entries, entry(0, doneTask(6)))

	assert.Nil(t, FindRecovery(entries, now, DefaultRecoveryGraceHours))
	assert.Equal(t, 3, CurrentStreak(entries, now))
}
