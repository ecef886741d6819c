package memory

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func TestCreateSessionDuplicate(t *testing.T) {
	t.Parallel()

	svc := NewService(Config{})
	if _, err := svc.CreateSession("s1", "biz-1", "u1"); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, err := svc.CreateSession("s1", "biz-1", "u1"); !errors.Is(err, ErrDuplicateSession) {
		t.Fatalf("expected ErrDuplicateSession, got %v", err)
	}
}

func TestCreateSessionReplacesExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := NewService(Config{SessionTimeout: 30 * time.Minute}, WithClock(fixedClock(&now)))

	if _, err := svc.CreateSession("s1", "biz-1", "u1"); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	now = now.Add(31 * time.Minute)
	session, err := svc.CreateSession("s1", "biz-2", "u2")
	if err != nil {
		t.Fatalf("expected expired session to be replaced, got %v", err)
	}
	if session.BusinessID != "biz-2" {
		t.Fatalf("unexpected business id: %s", session.BusinessID)
	}
}

func TestGetSessionEvictsExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := NewService(Config{SessionTimeout: 30 * time.Minute}, WithClock(fixedClock(&now)))

	svc.AddUserMessage("s1", "hello", "biz-1", "u1")
	if svc.GetSession("s1") == nil {
		t.Fatal("session must be live")
	}

	now = now.Add(30*time.Minute + time.Second)
	if svc.GetSession("s1") != nil {
		t.Fatal("expired session must be absent")
	}
	if stats := svc.Stats(); stats.ActiveSessions != 0 {
		t.Fatalf("expired session must be evicted, got %+v", stats)
	}
}

func TestAddUserMessageCreatesSession(t *testing.T) {
	t.Parallel()

	svc := NewService(Config{})
	session := svc.AddUserMessage("s1", "hi there", "biz-1", "u1")
	if session == nil {
		t.Fatal("expected session")
	}
	if len(session.Messages) != 1 || session.Messages[0].Role != RoleUser {
		t.Fatalf("unexpected messages: %+v", session.Messages)
	}
	if session.BusinessID != "biz-1" || session.UserID != "u1" {
		t.Fatalf("unexpected session fields: %+v", session)
	}
}

func TestAddAssistantMessageNeverCreates(t *testing.T) {
	t.Parallel()

	svc := NewService(Config{})
	if session := svc.AddAssistantMessage("missing", "hello"); session != nil {
		t.Fatal("assistant turn must not create a session")
	}
	if stats := svc.Stats(); stats.ActiveSessions != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestMessageActivityExtendsTimeout(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := NewService(Config{SessionTimeout: 30 * time.Minute}, WithClock(fixedClock(&now)))

	svc.AddUserMessage("s1", "first", "biz-1", "u1")

	now = now.Add(20 * time.Minute)
	svc.AddUserMessage("s1", "second", "biz-1", "u1")

	now = now.Add(20 * time.Minute)
	if svc.GetSession("s1") == nil {
		t.Fatal("activity must extend the session lifetime")
	}

	now = now.Add(31 * time.Minute)
	if svc.GetSession("s1") != nil {
		t.Fatal("idle session must expire")
	}
}

func TestConversationContextFormat(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC)
	svc := NewService(Config{}, WithClock(fixedClock(&now)))

	svc.AddUserMessage("s1", "I want a cappuccino", "biz-1", "u1")
	svc.AddAssistantMessage("s1", "I've added the Cappuccino to your cart")

	ctx := svc.ConversationContext("s1", 10)
	if !strings.HasPrefix(ctx, "CONVERSATION HISTORY:") {
		t.Fatalf("unexpected prefix: %q", ctx)
	}
	if !strings.Contains(ctx, "[14:30] Customer: I want a cappuccino") {
		t.Fatalf("missing user line: %q", ctx)
	}
	if !strings.Contains(ctx, "[14:30] Assistant: I've added the Cappuccino to your cart") {
		t.Fatalf("missing assistant line: %q", ctx)
	}
	if !strings.Contains(ctx, "maintaining context from previous messages") {
		t.Fatalf("missing continuation instruction: %q", ctx)
	}
}

func TestConversationContextLimitsWindow(t *testing.T) {
	t.Parallel()

	svc := NewService(Config{})
	for i := 0; i < 15; i++ {
		svc.AddUserMessage("s1", "message", "biz-1", "u1")
	}

	ctx := svc.ConversationContext("s1", 10)
	if got := strings.Count(ctx, "Customer:"); got != 10 {
		t.Fatalf("expected 10 rendered messages, got %d", got)
	}
}

func TestConversationContextAbsentSession(t *testing.T) {
	t.Parallel()

	svc := NewService(Config{})
	if ctx := svc.ConversationContext("missing", 10); ctx != "" {
		t.Fatalf("expected empty context, got %q", ctx)
	}
}

func TestOrderContextKeywordExtraction(t *testing.T) {
	t.Parallel()

	svc := NewService(Config{})
	svc.AddUserMessage("s1", "I'm vegetarian and allergic to nuts", "biz-1", "u1")
	svc.AddUserMessage("s1", "give me 2 large ones, extra spicy", "biz-1", "u1")
	svc.AddAssistantMessage("s1", "vegan options are keto friendly and sweet")

	oc := svc.OrderContext("s1")
	if !containsString(oc.DietaryRestrictions, "vegetarian") || !containsString(oc.DietaryRestrictions, "allergic") {
		t.Fatalf("unexpected dietary restrictions: %v", oc.DietaryRestrictions)
	}
	if !containsString(oc.QuantityRequests, "2") || !containsString(oc.QuantityRequests, "large") {
		t.Fatalf("unexpected quantity requests: %v", oc.QuantityRequests)
	}
	if !containsString(oc.Preferences, "spicy") {
		t.Fatalf("unexpected preferences: %v", oc.Preferences)
	}
	// Assistant turns are not customer intent.
	if containsString(oc.DietaryRestrictions, "vegan") || containsString(oc.Preferences, "sweet") {
		t.Fatalf("assistant messages must not contribute: %+v", oc)
	}
}

func TestClearSession(t *testing.T) {
	t.Parallel()

	svc := NewService(Config{})
	svc.AddUserMessage("s1", "hi", "biz-1", "u1")
	if !svc.ClearSession("s1") {
		t.Fatal("expected removal")
	}
	if svc.ClearSession("s1") {
		t.Fatal("second clear must report absence")
	}
}

func TestCleanupExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := NewService(Config{SessionTimeout: 30 * time.Minute}, WithClock(fixedClock(&now)))

	svc.AddUserMessage("s1", "hi", "biz-1", "u1")
	svc.AddUserMessage("s2", "hi", "biz-1", "u1")

	now = now.Add(31 * time.Minute)
	svc.AddUserMessage("s3", "hi", "biz-1", "u1")

	if removed := svc.CleanupExpired(); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if stats := svc.Stats(); stats.ActiveSessions != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestStatsCountsByBusiness(t *testing.T) {
	t.Parallel()

	svc := NewService(Config{})
	svc.AddUserMessage("s1", "hi", "biz-1", "u1")
	svc.AddUserMessage("s2", "hi", "biz-1", "u2")
	svc.AddUserMessage("s3", "hi", "biz-2", "u3")
	svc.AddAssistantMessage("s1", "hello")

	stats := svc.Stats()
	if stats.ActiveSessions != 3 || stats.TotalMessages != 4 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.SessionsByBusiness["biz-1"] != 2 || stats.SessionsByBusiness["biz-2"] != 1 {
		t.Fatalf("unexpected business counts: %+v", stats.SessionsByBusiness)
	}
}

func TestReturnedSessionIsACopy(t *testing.T) {
	t.Parallel()

	svc := NewService(Config{})
	session := svc.AddUserMessage("s1", "hi", "biz-1", "u1")
	session.Messages[0].Content = "mutated"

	if svc.History("s1")[0].Content != "hi" {
		t.Fatal("caller mutation must not reach the stored session")
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	svc := NewService(Config{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				svc.AddUserMessage("shared", "ping", "biz-1", "u1")
				svc.AddAssistantMessage("shared", "pong")
				svc.ConversationContext("shared", 10)
				svc.Stats()
			}
		}()
	}
	wg.Wait()

	if got := len(svc.History("shared")); got != 8*50*2 {
		t.Fatalf("expected %d messages, got %d", 8*50*2, got)
	}
}
