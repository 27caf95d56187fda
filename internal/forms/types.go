package forms

import (
	"slices"
	"time"

	forms "google.golang.org/api/forms/v1"
)

// Form is a form with its questions.
type Form struct {
	ID            string     `json:"formId"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	DocumentTitle string     `json:"documentTitle,omitempty"`
	ResponderURL  string     `json:"responderUrl,omitempty"`
	EditURL       string     `json:"editUrl"`
	Questions     []Question `json:"questions,omitempty"`
}

// Question is one question item of a form.
type Question struct {
	ID       string   `json:"questionId"`
	ItemID   string   `json:"itemId"`
	Title    string   `json:"title"`
	Type     string   `json:"type"`
	Required bool     `json:"required,omitempty"`
	Options  []string `json:"options,omitempty"`
}

// Response is one submitted response.
type Response struct {
	ID                string    `json:"responseId"`
	RespondentEmail   string    `json:"respondentEmail,omitempty"`
	CreateTime        time.Time `json:"createTime,omitzero"`
	LastSubmittedTime time.Time `json:"lastSubmittedTime,omitzero"`
	Answers           []Answer  `json:"answers"`
}

// Answer holds the values given for one question.
type Answer struct {
	QuestionID string   `json:"questionId"`
	Question   string   `json:"question,omitempty"`
	Values     []string `json:"values"`
}

// ResponsePage is one page of responses.
type ResponsePage struct {
	Responses     []Response `json:"responses"`
	NextPageToken string     `json:"nextPageToken,omitempty"`
}

// EditURL returns the editor link of a form.
func EditURL(formID string) string {
	return "https://docs.google.com/forms/d/" + formID + "/edit"
}

// QuestionTitles maps question ids to question titles.
func (f *Form) QuestionTitles() map[string]string {
	titles := make(map[string]string, len(f.Questions))
	for _, q := range f.Questions {
		titles[q.ID] = q.Title
	}
	return titles
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func questionType(q *forms.Question) (string, []string) {
	switch {
	case q.ChoiceQuestion != nil:
		var options []string
		for _, o := range q.ChoiceQuestion.Options {
			if o.IsOther {
				options = append(options, "Other")
				continue
			}
			options = append(options, o.Value)
		}
		return q.ChoiceQuestion.Type, options
	case q.TextQuestion != nil:
		if q.TextQuestion.Paragraph {
			return "PARAGRAPH", nil
		}
		return "TEXT", nil
	case q.ScaleQuestion != nil:
		return "SCALE", nil
	case q.DateQuestion != nil:
		return "DATE", nil
	case q.TimeQuestion != nil:
		return "TIME", nil
	case q.FileUploadQuestion != nil:
		return "FILE_UPLOAD", nil
	case q.RatingQuestion != nil:
		return "RATING", nil
	default:
		return "UNKNOWN", nil
	}
}

func toForm(f *forms.Form) *Form {
	if f == nil {
		return &Form{}
	}
	form := &Form{
		ID:           f.FormId,
		ResponderURL: f.ResponderUri,
		EditURL:      EditURL(f.FormId),
	}
	if f.Info != nil {
		form.Title = f.Info.Title
		form.Description = f.Info.Description
		form.DocumentTitle = f.Info.DocumentTitle
	}
	for _, item := range f.Items {
		if item == nil || item.QuestionItem == nil || item.QuestionItem.Question == nil {
			continue
		}
		q := item.QuestionItem.Question
		typ, options := questionType(q)
		form.Questions = append(form.Questions, Question{
			ID:       q.QuestionId,
			ItemID:   item.ItemId,
			Title:    item.Title,
			Type:     typ,
			Required: q.Required,
			Options:  options,
		})
	}
	return form
}

// toResponse converts r. titles labels answers and may be nil. Answers are
// ordered by question id.
func toResponse(r *forms.FormResponse, titles map[string]string) Response {
	if r == nil {
		return Response{}
	}
	resp := Response{
		ID:                r.ResponseId,
		RespondentEmail:   r.RespondentEmail,
		CreateTime:        parseTime(r.CreateTime),
		LastSubmittedTime: parseTime(r.LastSubmittedTime),
		Answers:           []Answer{},
	}

	ids := make([]string, 0, len(r.Answers))
	for id := range r.Answers {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		a := r.Answers[id]
		answer := Answer{QuestionID: id, Question: titles[id], Values: []string{}}
		if a.TextAnswers != nil {
			for _, v := range a.TextAnswers.Answers {
				answer.Values = append(answer.Values, v.Value)
			}
		}
		if a.FileUploadAnswers != nil {
			for _, f := range a.FileUploadAnswers.Answers {
				answer.Values = append(answer.Values, f.FileName+" ("+f.FileId+")")
			}
		}
		resp.Answers = append(resp.Answers, answer)
	}
	return resp
}
