package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btnpop/btnpop-api/models"
)

func TestRenderTicket(t *testing.T) {
	participant := &models.Participant{
		Name:   "Ada Lovelace",
		Email:  "ada@example.com",
		Phone:  "+1 555 0100",
		JoinID: "a1b2c3d4-e5f6-7890-abcd-ef1234567890",
	}
	event := &models.Event{
		Title:     "Open Source Meetup",
		Location:  "Community Hall",
		EventDate: time.Date(2025, 10, 4, 18, 0, 0, 0, time.UTC),
		EventTime: "18:00",
	}

	path := filepath.Join(t.TempDir(), "ticket.pdf")
	require.NoError(t, RenderTicket(participant, event, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Greater(t, len(data), 1000)
	assert.Equal(t, "%PDF", string(data[:4]))
}
