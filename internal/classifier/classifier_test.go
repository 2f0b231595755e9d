package classifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mixelka/emailtriage/pkg/models"
)

func TestPriorityOf(t *testing.T) {
	tests := []struct {
		name string
		msg  models.Message
		want models.Priority
	}{
		{
			name: "urgent keyword in subject",
			msg:  models.Message{Subject: "URGENT: server down"},
			want: models.PriorityUrgent,
		},
		{
			name: "urgent beats high",
			msg:  models.Message{Subject: "URGENT: important deadline"},
			want: models.PriorityUrgent,
		},
		{
			name: "asap in body",
			msg:  models.Message{Subject: "hello", Body: "Please confirm ASAP."},
			want: models.PriorityUrgent,
		},
		{
			name: "high keyword phrase",
			msg:  models.Message{Subject: "Action required: sign the form"},
			want: models.PriorityHigh,
		},
		{
			name: "senior sender without keywords",
			msg:  models.Message{From: "boss@x.com", Body: "please review"},
			want: models.PriorityHigh,
		},
		{
			name: "sender match ignores case",
			msg:  models.Message{From: "The.CEO@corp.com", Body: "fyi"},
			want: models.PriorityHigh,
		},
		{
			name: "keyword beats sender",
			msg:  models.Message{From: "manager@corp.com", Body: "this is critical"},
			want: models.PriorityUrgent,
		},
		{
			name: "question mark",
			msg:  models.Message{Subject: "Lunch?", From: "friend@x.com"},
			want: models.PriorityMedium,
		},
		{
			name: "question word",
			msg:  models.Message{Body: "A quick question about the doc"},
			want: models.PriorityMedium,
		},
		{
			name: "snippet used when body empty",
			msg:  models.Message{Snippet: "emergency in the lab"},
			want: models.PriorityUrgent,
		},
		{
			name: "nothing matches",
			msg:  models.Message{Subject: "Newsletter", Body: "Our monthly update."},
			want: models.PriorityLow,
		},
		{
			name: "empty message",
			msg:  models.Message{},
			want: models.PriorityLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PriorityOf(tt.msg))
		})
	}
}

func TestPriorityOfDeterministic(t *testing.T) {
	msg := models.Message{From: "boss@x.com", Subject: "Deadline?", Body: "Is the report ready?"}
	first := PriorityOf(msg)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, PriorityOf(msg))
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name string
		msg  models.Message
		want string
	}{
		{"meeting precedes financial", models.Message{Subject: "Meeting about invoice"}, CategoryMeeting},
		{"schedule", models.Message{Body: "Can we schedule a call?"}, CategoryMeeting},
		{"invoice", models.Message{Subject: "Invoice #A12345"}, CategoryFinancial},
		{"payment", models.Message{Body: "payment received"}, CategoryFinancial},
		{"report", models.Message{Subject: "Weekly status REPORT"}, CategoryReport},
		{"review", models.Message{Body: "please review the doc"}, CategoryReport},
		{"question", models.Message{Subject: "Question about order"}, CategorySupport},
		{"help", models.Message{Body: "how can we help"}, CategorySupport},
		{"general", models.Message{Subject: "Newsletter"}, CategoryGeneral},
		{"empty", models.Message{}, CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryOf(tt.msg))
		})
	}
}

func TestEffortOf(t *testing.T) {
	tests := []struct {
		length int
		want   string
	}{
		{0, "2-3"},
		{199, "2-3"},
		{200, "5-7"},
		{499, "5-7"},
		{500, "10-15"},
		{999, "10-15"},
		{1000, "15-20"},
		{5000, "15-20"},
	}

	for _, tt := range tests {
		msg := models.Message{Body: strings.Repeat("a", tt.length)}
		assert.Equal(t, tt.want, EffortOf(msg), "body length %d", tt.length)
	}
}

func TestEffortOfMonotonic(t *testing.T) {
	prev := 0
	for length := 0; length <= 1200; length += 7 {
		minutes := EffortMinutes(EffortOf(models.Message{Body: strings.Repeat("x", length)}))
		assert.GreaterOrEqual(t, minutes, prev, "body length %d", length)
		prev = minutes
	}
}

func TestEffortOfCountsCharacters(t *testing.T) {
	// 150 two-byte runes stay in the shortest bucket
	msg := models.Message{Body: strings.Repeat("é", 150)}
	assert.Equal(t, "2-3", EffortOf(msg))
}

func TestEffortMinutes(t *testing.T) {
	assert.Equal(t, 2, EffortMinutes("2-3"))
	assert.Equal(t, 15, EffortMinutes("15-20"))
	assert.Equal(t, 0, EffortMinutes(""))
	assert.Equal(t, 0, EffortMinutes("abc"))
}
