package managed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgex-ci/prcomment/internal/githubapi"
	"github.com/sgex-ci/prcomment/internal/managed/managedtest"
)

func TestFind(t *testing.T) {
	comments := []githubapi.IssueComment{
		{ID: 1, Body: "unrelated"},
		{ID: 2, Body: testBase + "\nfirst"},
		{ID: 3, Body: testBase + "\nsecond"},
	}

	found, ok := Find(comments, testBase)
	require.True(t, ok)
	assert.Equal(t, int64(2), found.ID)

	_, ok = Find(comments, Marker(testBase, "other"))
	assert.False(t, ok)

	_, ok = Find(comments, "")
	assert.False(t, ok)
}

func TestFindReferencing(t *testing.T) {
	prefix := FamilyPrefix(testBase)
	comments := []githubapi.IssueComment{
		{ID: 1, Body: "human says abc1234 looks good"},
		{ID: 2, Body: Marker(testBase, "other-run") + "\nBuild for abc1234"},
	}

	found, ok := FindReferencing(comments, prefix, "abc1234")
	require.True(t, ok)
	assert.Equal(t, int64(2), found.ID)

	_, ok = FindReferencing(comments, prefix, "fffffff")
	assert.False(t, ok)
	_, ok = FindReferencing(comments, prefix, "")
	assert.False(t, ok)
}

func TestPublisher_CreatesThenUpdates(t *testing.T) {
	svc := managedtest.NewService()
	svc.Seed(4, "first human comment")
	p := NewPublisher(svc, nil)
	ctx := context.Background()

	first, err := p.Publish(ctx, 4, testBase, testBase+"\nv1")
	require.NoError(t, err)
	assert.Equal(t, ActionCreated, first.Action)

	second, err := p.Publish(ctx, 4, testBase, testBase+"\nv2")
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, second.Action)
	assert.Equal(t, first.CommentID, second.CommentID)

	comments := svc.Comments(4)
	require.Len(t, comments, 2)
	assert.Equal(t, testBase+"\nv2", comments[1].Body)
}

func TestPublisher_RejectsBodyWithoutLeadingMarker(t *testing.T) {
	svc := managedtest.NewService()
	p := NewPublisher(svc, nil)

	_, err := p.Publish(context.Background(), 1, testBase, "oops\n"+testBase)
	require.Error(t, err)
	assert.True(t, IsRenderInvariant(err))
	assert.Equal(t, 0, svc.Calls())
}

func TestPublisher_WrapsTransportErrors(t *testing.T) {
	boom := errors.New("connection reset by peer")

	tests := []struct {
		name   string
		setup  func(*managedtest.Service)
		wantOp string
	}{
		{name: "list", setup: func(s *managedtest.Service) { s.ListErr = boom }, wantOp: "list"},
		{name: "create", setup: func(s *managedtest.Service) { s.CreateErr = boom }, wantOp: "create"},
		{name: "update", setup: func(s *managedtest.Service) {
			s.Seed(1, testBase+"\nold")
			s.UpdateErr = boom
		}, wantOp: "update"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := managedtest.NewService()
			tt.setup(svc)

			_, err := NewPublisher(svc, nil).Publish(context.Background(), 1, testBase, testBase+"\nnew")
			require.Error(t, err)
			require.True(t, IsTransport(err))

			var te *TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.wantOp, te.Op)
			assert.ErrorIs(t, err, boom)
		})
	}
}
