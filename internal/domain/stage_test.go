package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineStageOrder(t *testing.T) {
	assert.Equal(t, 1, StageNew.Index())
	assert.Equal(t, 9, StageWon.Index())
	assert.Equal(t, 0, StageLost.Index())
	assert.Equal(t, StageCount, StageWon.Index())
	assert.True(t, StageWon.IsTerminal())
	assert.True(t, StageLost.IsTerminal())
	assert.False(t, StagePaid.IsTerminal())
}

func TestParseStage(t *testing.T) {
	s, err := ParseStage("negotiating")
	require.NoError(t, err)
	assert.Equal(t, StageNegotiating, s)

	_, err = ParseStage("Negotiating")
	assert.ErrorIs(t, err, ErrUnknownStage)
}

func TestPipelineStageJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Stage PipelineStage `json:"stage"`
	}{StageReserved})
	require.NoError(t, err)
	assert.JSONEq(t, `{"stage":"reserved"}`, string(b))

	var out struct {
		Stage PipelineStage `json:"stage"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"stage":"archived"}`), &out))
}

func TestWinningCriteriaValue(t *testing.T) {
	m := CampaignMetrics{OpenRate: 30, ClickRate: 7, CTR: 23}
	assert.Equal(t, 30, CriteriaOpenRate.Value(m))
	assert.Equal(t, 7, CriteriaClickRate.Value(m))
	assert.Equal(t, 23, CriteriaCTR.Value(m))
	assert.False(t, WinningCriteria("revenue").Valid())
}
