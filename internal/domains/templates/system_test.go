package templates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSystemTemplates(t *testing.T) {
	builtin, err := LoadSystemTemplates()
	require.NoError(t, err)
	require.NotEmpty(t, builtin)

	keys := make(map[string]bool)
	for i, st := range builtin {
		assert.NotEmpty(t, st.Name, st.Key)
		assert.NotEmpty(t, st.Body, st.Key)
		assert.False(t, keys[st.Key], "duplicate key %s", st.Key)
		keys[st.Key] = true
		if i > 0 {
			assert.Less(t, builtin[i-1].Key, st.Key, "sorted by key")
		}
	}
	assert.True(t, keys["appointment-confirmation"])
	assert.True(t, keys["seasonal-promotion"])
}

func TestSeedSystemTemplates(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, nil)

	n, err := svc.SeedSystemTemplates(context.Background())
	require.NoError(t, err, "every bundled template must pass authoring validation")

	builtin, err := LoadSystemTemplates()
	require.NoError(t, err)
	assert.Equal(t, len(builtin), n)
	require.Len(t, repo.upsertCalls, n)

	for _, call := range repo.upsertCalls {
		assert.NotEmpty(t, call.SystemKey)
		assert.NotNil(t, call.Variables)
		assert.NotNil(t, call.Tags)
		if call.SystemKey == "balance-due" {
			assert.Equal(t, []string{"patient.balance", "patient.firstName", "clinic.name", "clinic.phone"}, call.Variables)
		}
		if call.SystemKey == "intake-forms" {
			assert.True(t, call.Subject.Valid)
			assert.Equal(t, ChannelEmail, call.Channel)
		}
	}
}

func TestSeedSystemTemplates_RendersSample(t *testing.T) {
	svc := newTestService(newMockRepository(), nil)
	builtin, err := LoadSystemTemplates()
	require.NoError(t, err)

	for _, st := range builtin {
		resp, err := svc.Preview(PreviewRequest{Body: st.Body, Subject: st.Subject})
		require.NoError(t, err, st.Key)
		assert.True(t, resp.Body.Success, st.Key)
		assert.Empty(t, resp.Body.Variables.Missing, st.Key)
		if st.Channel == ChannelSMS {
			assert.Equal(t, 1, resp.Body.SegmentCount, "%s renders as one SMS for the sample patient", st.Key)
		}
	}
}
