package duration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatNanos(t *testing.T) {
	cases := []struct {
		name  string
		nanos int64
		want  string
	}{
		{"zero", 0, "0s"},
		{"sub_second_floors", 999_999_999, "0s"},
		{"five_seconds", 5_000_000_000, "5s"},
		{"boundary_stays_seconds", 120_000_000_000, "120s"},
		{"boundary_fraction_stays_seconds", 120_999_999_999, "120s"},
		{"promotes_to_minutes", 121_000_000_000, "2m"},
		{"five_minutes", int64(5 * time.Minute), "5m"},
		{"two_hours_stays_minutes", int64(120 * time.Minute), "120m"},
		{"promotes_to_hours", int64(150 * time.Minute), "2h"},
		{"a_day", int64(24 * time.Hour), "24h"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, FormatNanos(tc.nanos))
		})
	}
}

func TestFormatMillis(t *testing.T) {
	require.Equal(t, "2m", FormatMillis(125_000))
	require.Equal(t, "120s", FormatMillis(120_999))
	require.Equal(t, "0s", FormatMillis(999))
	require.Equal(t, "3h", FormatMillis(int64(3*time.Hour/time.Millisecond)))
}

func TestFormatSeconds(t *testing.T) {
	require.Equal(t, "2h", FormatSeconds(9000))
	require.Equal(t, "120m", FormatSeconds(7200))
	require.Equal(t, "120m", FormatSeconds(7259))
	require.Equal(t, "2h", FormatSeconds(7260))
	require.Equal(t, "2h", FormatSeconds(7320))
}

func TestFormatMinutes(t *testing.T) {
	require.Equal(t, "2h", FormatMinutes(150))
	require.Equal(t, "0h", FormatMinutes(59))
}

func TestFormatDuration(t *testing.T) {
	require.Equal(t, FormatNanos(int64(90*time.Second)), Format(90*time.Second))
}

// Negative input is applied with floor division and never clamped.
func TestNegativeInputFloors(t *testing.T) {
	require.Equal(t, "-2s", FormatMillis(-1500))
	require.Equal(t, "-1s", FormatNanos(-1))
	require.Equal(t, "-300s", FormatMillis(-300_000))
}

func TestFloorDiv(t *testing.T) {
	require.Equal(t, int64(2), floorDiv(5, 2))
	require.Equal(t, int64(-3), floorDiv(-5, 2))
	require.Equal(t, int64(-2), floorDiv(-4, 2))
	require.Equal(t, int64(0), floorDiv(0, 7))
}
