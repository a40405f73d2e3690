// Package managedtest provides an in-memory issue-comment service for tests.
package managedtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/sgex-ci/prcomment/internal/githubapi"
)

// Service stores comments of a single repository in memory and records every call.
type Service struct {
	mu       sync.Mutex
	comments map[int][]githubapi.IssueComment
	nextID   int64

	// ListErr, CreateErr and UpdateErr, when set, are returned by the matching call.
	ListErr   error
	CreateErr error
	UpdateErr error

	ListCalls   int
	CreateCalls int
	UpdateCalls int
}

// NewService returns an empty Service.
func NewService() *Service {
	return &Service{comments: make(map[int][]githubapi.IssueComment), nextID: 1000}
}

// Seed appends a comment authored by someone else and returns its ID.
func (s *Service) Seed(number int, body string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.comments[number] = append(s.comments[number], githubapi.IssueComment{
		ID:     s.nextID,
		Author: "someone",
		Body:   body,
		URL:    fmt.Sprintf("https://github.com/o/r/pull/%d#issuecomment-%d", number, s.nextID),
	})
	return s.nextID
}

// Comments returns a copy of the comments on a pull request.
func (s *Service) Comments(number int) []githubapi.IssueComment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]githubapi.IssueComment(nil), s.comments[number]...)
}

// Calls returns the total number of API calls made.
func (s *Service) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ListCalls + s.CreateCalls + s.UpdateCalls
}

func (s *Service) ListComments(_ context.Context, number int) ([]githubapi.IssueComment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListCalls++
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	return append([]githubapi.IssueComment(nil), s.comments[number]...), nil
}

func (s *Service) CreateComment(_ context.Context, number int, body string) (githubapi.IssueComment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CreateCalls++
	if s.CreateErr != nil {
		return githubapi.IssueComment{}, s.CreateErr
	}
	s.nextID++
	c := githubapi.IssueComment{
		ID:     s.nextID,
		Author: "github-actions[bot]",
		Body:   body,
		URL:    fmt.Sprintf("https://github.com/o/r/pull/%d#issuecomment-%d", number, s.nextID),
	}
	s.comments[number] = append(s.comments[number], c)
	return c, nil
}

func (s *Service) UpdateComment(_ context.Context, id int64, body string) (githubapi.IssueComment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdateCalls++
	if s.UpdateErr != nil {
		return githubapi.IssueComment{}, s.UpdateErr
	}
	for number, list := range s.comments {
		for i := range list {
			if list[i].ID == id {
				list[i].Body = body
				s.comments[number] = list
				return list[i], nil
			}
		}
	}
	return githubapi.IssueComment{}, fmt.Errorf("comment %d not found", id)
}
