package models

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "leadgate/pkg/domain-errors"
)

type LeadSuite struct {
	suite.Suite
}

func TestLeadSuite(t *testing.T) {
	suite.Run(t, new(LeadSuite))
}

func (s *LeadSuite) TestNewLead() {
	s.Run("valid submission", func() {
		lead, err := NewLead("Jane Doe", "555-0100", "Plumbing", "12 Elm St, Springfield", "", "pipe burst")
		s.Require().NoError(err)
		s.Equal("Jane Doe", lead.Name)
		s.Equal("555-0100", lead.Phone)
		s.Equal("Plumbing", lead.Service)
		s.Equal("Springfield", lead.City)
		s.Equal("pipe burst", lead.Message)
	})

	s.Run("trims whitespace", func() {
		lead, err := NewLead("  Jane  ", " 555-0100 ", " Roofing ", "", "", "  ")
		s.Require().NoError(err)
		s.Equal("Jane", lead.Name)
		s.Equal("555-0100", lead.Phone)
		s.Equal("Roofing", lead.Service)
		s.Empty(lead.Message)
	})

	s.Run("explicit city wins over derivation", func() {
		lead, err := NewLead("Jane", "555-0100", "Roofing", "12 Elm St, Springfield", "Shelbyville", "")
		s.Require().NoError(err)
		s.Equal("Shelbyville", lead.City)
	})

	s.Run("missing name rejected", func() {
		_, err := NewLead("", "555-0100", "Roofing", "", "", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "name")
	})

	s.Run("missing phone rejected", func() {
		_, err := NewLead("Jane", "   ", "Roofing", "", "", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "phone")
	})

	s.Run("missing service rejected", func() {
		_, err := NewLead("Jane", "555-0100", "", "", "", "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "service")
	})
}

func (s *LeadSuite) TestDeriveCity() {
	cases := []struct {
		name    string
		address string
		want    string
	}{
		{"last comma segment", "12 Elm St, Springfield", "Springfield"},
		{"multiple segments", "Apt 4, 12 Elm St, Springfield", "Springfield"},
		{"no comma uses whole address", "Springfield", "Springfield"},
		{"trailing comma falls back to previous segment", "12 Elm St, Springfield, ", "Springfield"},
		{"empty address", "", UnknownCity},
		{"only commas", ", ,", UnknownCity},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.Equal(tc.want, DeriveCity(tc.address))
		})
	}
}

func (s *LeadSuite) TestPlaceholderLead() {
	lead := PlaceholderLead()
	s.Equal("Unknown", lead.Name)
	s.Equal("Unknown", lead.Phone)
	s.Equal("Unknown", lead.Service)
	s.Empty(lead.City)
}

func (s *LeadSuite) TestNewTraceID() {
	pattern := regexp.MustCompile(`^L-[0-9A-Z]{9}$`)

	s.Run("matches wire format", func() {
		s.Regexp(pattern, NewTraceID())
	})

	s.Run("unique across generations", func() {
		seen := make(map[string]bool)
		for range 100 {
			id := NewTraceID()
			s.False(seen[id], "duplicate trace id %s", id)
			seen[id] = true
		}
	})
}
