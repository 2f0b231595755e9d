package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mixelka/emailtriage/pkg/models"
)

func TestCompose(t *testing.T) {
	msg := models.Message{From: "alice@example.com", Subject: "Quarterly plan", Body: "See attached."}

	got := Compose(msg, "Happy to discuss on Monday.")
	want := "Dear alice@example.com,\n\nThank you for your email regarding \"Quarterly plan\".\n\nHappy to discuss on Monday.\n\nBest regards"
	assert.Equal(t, want, got)
}

func TestComposeDefaultContext(t *testing.T) {
	tests := []struct {
		name string
		msg  models.Message
		want string
	}{
		{
			name: "plain message",
			msg:  models.Message{From: "bob@x.com", Subject: "Hello", Body: "hi there"},
			want: DefaultContext,
		},
		{
			name: "derived urgent",
			msg:  models.Message{From: "ops@x.com", Subject: "Server down", Body: "Need help ASAP"},
			want: UrgentContext,
		},
		{
			name: "explicit priority overrides derived",
			msg:  models.Message{Subject: "URGENT", ReplyPriority: models.PriorityLow},
			want: DefaultContext,
		},
		{
			name: "blank context",
			msg:  models.Message{Subject: "Hello"},
			want: DefaultContext,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, Compose(tt.msg, "  "), "\n\n"+tt.want+"\n\n")
		})
	}
}

func TestComposeIntent(t *testing.T) {
	msg := models.Message{From: "carol@x.com", Subject: "Dinner"}

	for _, intent := range Intents {
		t.Run(string(intent), func(t *testing.T) {
			assert.NotEmpty(t, intent.Context())
			assert.Contains(t, ComposeIntent(msg, intent), "\n\n"+intent.Context()+"\n\n")
		})
	}
}

func TestComposeKeepsIntentNamesAsText(t *testing.T) {
	msg := models.Message{From: "carol@x.com", Subject: "Dinner"}

	got := Compose(msg, "Decline")
	assert.Contains(t, got, "\n\nDecline\n\n")
	assert.NotContains(t, got, IntentDecline.Context())

	got = Compose(msg, " question ")
	assert.Contains(t, got, "\n\nquestion\n\n")
	assert.NotContains(t, got, IntentQuestion.Context())
}

func TestComposeEmptyMessage(t *testing.T) {
	got := Compose(models.Message{}, "")
	assert.Equal(t, "Dear ,\n\nThank you for your email regarding \"\".\n\n"+DefaultContext+"\n\nBest regards", got)
}

func TestParseIntent(t *testing.T) {
	intent, ok := ParseIntent("Positive")
	assert.True(t, ok)
	assert.Equal(t, IntentPositive, intent)

	_, ok = ParseIntent("maybe")
	assert.False(t, ok)

	_, ok = ParseIntent("")
	assert.False(t, ok)
}

func TestIntentCodes(t *testing.T) {
	seen := make(map[string]bool)
	for _, intent := range Intents {
		code := intent.Code()
		assert.Len(t, code, 1)
		assert.False(t, seen[code], "duplicate code %q", code)
		seen[code] = true

		back, ok := IntentFromCode(code)
		assert.True(t, ok)
		assert.Equal(t, intent, back)
	}

	_, ok := IntentFromCode("z")
	assert.False(t, ok)
}
