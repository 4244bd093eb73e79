package engine

import (
	"errors"
	"fmt"
	"strings"

	"badgekit/core"
)

// Thresholds carries the one numeric bound each thresholded badge needs.
// Values are opaque to the engine; the administrative UI that edits them is
// out of scope.
type Thresholds struct {
	DisciplinedMinScore     int `json:"disciplined_min_score"`
	PeerPressureMinScore    int `json:"peer_pressure_min_score"`
	TeacherMinScore         int `json:"teacher_min_score"`
	NiceAnswerMinScore      int `json:"nice_answer_min_score"`
	NiceQuestionMinScore    int `json:"nice_question_min_score"`
	SelfLearnerMinScore     int `json:"self_learner_min_score"`
	PopularQuestionMinViews int `json:"popular_question_min_views"`
	CivicDutyMinVotes       int `json:"civic_duty_min_votes"`
	GuruMinScore            int `json:"guru_min_score"`
	EnlightenedMinScore     int `json:"enlightened_min_score"`
}

// DefaultThresholds returns the stock bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DisciplinedMinScore:     3,
		PeerPressureMinScore:    3,
		TeacherMinScore:         1,
		NiceAnswerMinScore:      2,
		NiceQuestionMinScore:    2,
		SelfLearnerMinScore:     1,
		PopularQuestionMinViews: 150,
		CivicDutyMinVotes:       100,
		GuruMinScore:            5,
		EnlightenedMinScore:     3,
	}
}

// Validate rejects missing (non-positive) thresholds; a rule without its
// bound is a fatal configuration error at startup.
func (t Thresholds) Validate() error {
	var errs []string
	check := func(name string, v int) {
		if v <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive", name))
		}
	}
	check("disciplined_min_score", t.DisciplinedMinScore)
	check("peer_pressure_min_score", t.PeerPressureMinScore)
	check("teacher_min_score", t.TeacherMinScore)
	check("nice_answer_min_score", t.NiceAnswerMinScore)
	check("nice_question_min_score", t.NiceQuestionMinScore)
	check("self_learner_min_score", t.SelfLearnerMinScore)
	check("popular_question_min_views", t.PopularQuestionMinViews)
	check("civic_duty_min_votes", t.CivicDutyMinVotes)
	check("guru_min_score", t.GuruMinScore)
	check("enlightened_min_score", t.EnlightenedMinScore)
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// DefaultRules builds the standard badge set against the given thresholds.
func DefaultRules(t Thresholds) []core.Rule {
	return []core.Rule{
		core.DeletionScoreRule{Badge: core.BadgeDisciplined, MinScore: t.DisciplinedMinScore},
		core.DeletionScoreRule{Badge: core.BadgePeerPressure, MinScore: t.PeerPressureMinScore, Downvoted: true},
		core.FirstAnswerScoreRule{Badge: core.BadgeTeacher, MinScore: t.TeacherMinScore},
		core.AnswerScoreRule{Badge: core.BadgeNiceAnswer, MinScore: t.NiceAnswerMinScore},
		core.AnswerScoreRule{Badge: core.BadgeSelfLearner, MinScore: t.SelfLearnerMinScore, SelfAnswered: true},
		core.QuestionScoreRule{Badge: core.BadgeNiceQuestion, MinScore: t.NiceQuestionMinScore},
		core.ViewCountRule{Badge: core.BadgePopularQuestion, MinViews: t.PopularQuestionMinViews},
		core.FirstVoteRule{Badge: core.BadgeStudent, Trigger: core.EventVoteUp, Recipient: core.RoleAuthor, OnlyKind: core.KindQuestion},
		core.FirstVoteRule{Badge: core.BadgeSupporter, Trigger: core.EventVoteUp, Recipient: core.RoleVoter},
		core.FirstVoteRule{Badge: core.BadgeCritic, Trigger: core.EventVoteDown, Recipient: core.RoleVoter},
		core.VoteCountRule{Badge: core.BadgeCivicDuty, MinVotes: t.CivicDutyMinVotes},
		core.FirstAcceptedRule{Badge: core.BadgeScholar},
		core.AcceptedScoreRule{Badge: core.BadgeGuru, MinScore: t.GuruMinScore},
		core.AcceptedScoreRule{Badge: core.BadgeEnlightened, MinScore: t.EnlightenedMinScore},
	}
}
