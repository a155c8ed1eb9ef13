package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTeamRecordWinPct(t *testing.T) {
	cases := []struct {
		name   string
		record TeamRecord
		want   float64
	}{
		{name: "no games played", record: TeamRecord{}, want: 0},
		{name: "winless", record: TeamRecord{Wins: 0, Losses: 4}, want: 0},
		{name: "even split", record: TeamRecord{Wins: 2, Losses: 2}, want: 50},
		{name: "undefeated", record: TeamRecord{Wins: 4, Losses: 0}, want: 100},
		{name: "rounds to two decimals", record: TeamRecord{Wins: 1, Losses: 2}, want: 33.33},
		{name: "rounds up", record: TeamRecord{Wins: 2, Losses: 1}, want: 66.67},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.record.WinPct())
		})
	}
}

func TestTeamRoleVoteWeight(t *testing.T) {
	assert.Equal(t, 3, TeamRoleCaptain.VoteWeight())
	assert.Equal(t, 2, TeamRoleCoCaptain.VoteWeight())
	assert.Equal(t, 1, TeamRoleMember.VoteWeight())
	assert.Equal(t, 1, TeamRole("SOMETHING_ELSE").VoteWeight())
}

func TestDraftPickSkipped(t *testing.T) {
	poolID := uuid.New()

	drafted := DraftPick{CardPoolID: &poolID, CardID: "abc-123"}
	assert.False(t, drafted.Skipped())

	skipped := DraftPick{CardID: SkippedPickCardID, CardName: SkippedPickCardName}
	assert.True(t, skipped.Skipped())
}
