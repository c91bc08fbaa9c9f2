package match

// SelectQuestion holds id as the current selection. It is a no-op when the
// question is not displayed or already matched.
func (s Session) SelectQuestion(id string) Session {
	if _, ok := s.question(id); !ok {
		return s
	}
	if _, matched := s.MatchForQuestion(id); matched {
		return s
	}
	s.SelectedQuestionID = id
	return s
}

// Deselect drops the current selection.
func (s Session) Deselect() Session {
	s.SelectedQuestionID = ""
	return s
}

// SelectExplanation resolves the held question against explanation id and
// records the match. Without a selection, or for a used or unknown
// explanation, it returns the session unchanged.
func (s Session) SelectExplanation(id string) Session {
	if s.SelectedQuestionID == "" || s.IsDisabled(id) {
		return s
	}
	q, ok := s.question(s.SelectedQuestionID)
	if !ok {
		return s
	}
	e, ok := s.explanation(id)
	if !ok {
		return s
	}

	m := Match{
		QuestionID:    q.ID,
		ExplanationID: e.ID,
		IsCorrect:     q.HasExplanation(e.ID),
		PairColor:     Palette[len(s.Matches)%len(Palette)],
	}

	// copy before append so earlier Session values never observe this match
	matches := make([]Match, len(s.Matches), len(s.Matches)+1)
	copy(matches, s.Matches)
	disabled := make([]string, len(s.DisabledExplanationIDs), len(s.DisabledExplanationIDs)+1)
	copy(disabled, s.DisabledExplanationIDs)

	s.Matches = append(matches, m)
	s.DisabledExplanationIDs = append(disabled, e.ID)
	s.SelectedQuestionID = ""
	return s
}

// LastMatch returns the most recently recorded match.
func (s Session) LastMatch() (Match, bool) {
	if len(s.Matches) == 0 {
		return Match{}, false
	}
	return s.Matches[len(s.Matches)-1], true
}

func (s Session) IsComplete() bool {
	return len(s.DisplayQuestions) > 0 && len(s.Matches) == len(s.DisplayQuestions)
}

func (s Session) CorrectCount() int {
	n := 0
	for _, m := range s.Matches {
		if m.IsCorrect {
			n++
		}
	}
	return n
}

func (s Session) TotalCount() int { return len(s.DisplayQuestions) }

// AnsweredCorrectly is true only when every displayed question has a correct match.
func (s Session) AnsweredCorrectly() bool {
	total := s.TotalCount()
	return total > 0 && s.CorrectCount() == total
}
