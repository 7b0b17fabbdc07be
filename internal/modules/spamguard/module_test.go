package spamguard

import (
	"testing"
	"time"
)

func TestRepeatedBurstEscalatesToMute(t *testing.T) {
	module := New()
	base := time.Now()

	var verdict Verdict
	var reason string
	for i := 0; i < 6; i++ {
		verdict, reason = module.Inspect(Sample{
			UserID:    "u1",
			ChannelID: "c1",
			Content:   "!!!SPAM!!!",
			At:        base.Add(time.Duration(i) * 800 * time.Millisecond),
		})
	}
	if verdict != Mute {
		t.Fatalf("expected mute, got %s (%s)", verdict, reason)
	}
}

func TestShoutingAloneWarns(t *testing.T) {
	module := New()

	verdict, reason := module.Inspect(Sample{
		UserID:  "u1",
		Content: "STOP DOING THAT RIGHT NOW",
		At:      time.Now(),
	})
	if verdict != Warn {
		t.Fatalf("expected warn, got %s (%s)", verdict, reason)
	}
}

func TestShortShoutIsClean(t *testing.T) {
	module := New()

	// Below the minimum length the caps signal is ignored.
	verdict, _ := module.Inspect(Sample{UserID: "u1", Content: "!!!SPAM!!!", At: time.Now()})
	if verdict != Clean {
		t.Fatalf("expected clean, got %s", verdict)
	}
}

func TestMentionFloodWarns(t *testing.T) {
	module := New()

	verdict, reason := module.Inspect(Sample{
		UserID:   "u1",
		Content:  "hey everyone look here",
		Mentions: 5,
		At:       time.Now(),
	})
	if verdict != Warn || reason != "mention_flood" {
		t.Fatalf("expected mention_flood warn, got %s (%s)", verdict, reason)
	}
}

func TestInviteBurstWithMentionsKicks(t *testing.T) {
	module := New()
	base := time.Now()

	var verdict Verdict
	for i := 0; i < 6; i++ {
		verdict, _ = module.Inspect(Sample{
			UserID:   "u1",
			Content:  "join discord.gg/freestuff now",
			Mentions: 6,
			At:       base.Add(time.Duration(i) * 500 * time.Millisecond),
		})
	}
	if verdict != Kick {
		t.Fatalf("expected kick, got %s", verdict)
	}
}

func TestRapidDistinctMessagesWarn(t *testing.T) {
	module := New()
	base := time.Now()

	contents := []string{
		"first thing on my mind",
		"and now something else",
		"quick follow-up question",
		"one more unrelated thought",
		"okay last one I promise",
	}
	var verdict Verdict
	var reason string
	for i, content := range contents {
		verdict, reason = module.Inspect(Sample{
			UserID:  "u1",
			Content: content,
			At:      base.Add(time.Duration(i) * 700 * time.Millisecond),
		})
	}
	if verdict != Warn || reason != "frequency" {
		t.Fatalf("expected frequency warn, got %s (%s)", verdict, reason)
	}
}

func TestDistinctMessagesStayClean(t *testing.T) {
	module := New()
	base := time.Now()

	contents := []string{
		"anyone up for a game later tonight?",
		"the patch notes dropped an hour ago",
		"I finally finished that book you recommended",
		"meeting moved to thursday, heads up",
	}
	for i, content := range contents {
		verdict, reason := module.Inspect(Sample{
			UserID:  "u1",
			Content: content,
			At:      base.Add(time.Duration(i) * 10 * time.Second),
		})
		if verdict != Clean {
			t.Fatalf("message %d: expected clean, got %s (%s)", i, verdict, reason)
		}
	}
}

func TestStaffExemptionIsCallerResponsibility(t *testing.T) {
	// The detector scores content only; the gateway layer decides who is
	// inspected. Same content, same verdict, regardless of author.
	module := New()
	verdictA, _ := module.Inspect(Sample{UserID: "staff", Content: "STOP DOING THAT RIGHT NOW", At: time.Now()})
	verdictB, _ := module.Inspect(Sample{UserID: "member", Content: "STOP DOING THAT RIGHT NOW", At: time.Now()})
	if verdictA != verdictB {
		t.Fatalf("verdicts diverged: %s vs %s", verdictA, verdictB)
	}
}
