// internal/flow/engine_test.go
package flow

import (
	"context"
	"errors"
	"testing"
	"time"

	"acadezone-chatbot/internal/analytics"
	commonerrors "acadezone-chatbot/internal/common/errors"
	"acadezone-chatbot/internal/common/logger"
	"acadezone-chatbot/internal/matcher"
	"acadezone-chatbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	upsertErr       error
	updateErr       error
	contactErr      error
	upsertCalls     int
	updateCalls     int
	contactKinds    []models.ContactRequestKind
	lastDepartment  string
	lastAnswers     map[string]string
	lastContactUser string
}

func (f *fakeRepository) UpsertUser(_ context.Context, _ models.Identity, department string) (string, error) {
	f.upsertCalls++
	f.lastDepartment = department
	if f.upsertErr != nil {
		return "", f.upsertErr
	}
	return "user-1", nil
}

func (f *fakeRepository) UpdateSession(_ context.Context, _, _ string, answers map[string]string) error {
	f.updateCalls++
	f.lastAnswers = answers
	return f.updateErr
}

func (f *fakeRepository) CreateContactRequest(_ context.Context, userID string, kind models.ContactRequestKind) (string, error) {
	if f.contactErr != nil {
		return "", f.contactErr
	}
	f.contactKinds = append(f.contactKinds, kind)
	f.lastContactUser = userID
	return "req-1", nil
}

type fakeRecommender struct {
	result    *models.MatchResult
	err       error
	lastQuery matcher.Query
}

func (f *fakeRecommender) Match(_ context.Context, query matcher.Query) (*models.MatchResult, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type eventLog struct {
	stepCompleted    []analytics.StepCompletedEvent
	sessionCompleted []analytics.SessionCompletedEvent
	contactRequests  []models.ContactRequestKind
}

func (l *eventLog) SessionStart(context.Context, string, string, string) error { return nil }

func (l *eventLog) StepCompleted(_ context.Context, e analytics.StepCompletedEvent) error {
	l.stepCompleted = append(l.stepCompleted, e)
	return nil
}

func (l *eventLog) SessionCompleted(_ context.Context, e analytics.SessionCompletedEvent) error {
	l.sessionCompleted = append(l.sessionCompleted, e)
	return nil
}

func (l *eventLog) ContactRequestCreated(_ context.Context, _ string, kind models.ContactRequestKind) error {
	l.contactRequests = append(l.contactRequests, kind)
	return nil
}

func matchedCourses() *models.MatchResult {
	return &models.MatchResult{
		Courses: []models.Course{
			{ID: "c-1", Title: "Python ile Veri Bilimi", Description: "Başlangıç seviyesi", URL: "https://acadezone.com/kurs/veri-bilimi"},
			{ID: "c-2", Title: "Go ile Backend", Description: "Orta seviye", URL: "https://acadezone.com/kurs/go-backend"},
		},
		Campaigns: []models.Campaign{
			{ID: "k-1", Title: "Erken Kayıt", Description: "Eylül sonuna kadar", DiscountRate: 20},
		},
	}
}

type testEnv struct {
	engine *Engine
	repo   *fakeRepository
	rec    *fakeRecommender
	events *eventLog
	conv   *models.Conversation
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := &fakeRepository{}
	rec := &fakeRecommender{result: matchedCourses()}
	events := &eventLog{}
	engine := NewEngine(Options{
		Recommender:        rec,
		Identities:         repo,
		Events:             events,
		ApplicationBaseURL: "https://acadezone.com/basvuru",
		Logger:             logger.NewNoOpLogger(),
	})
	return &testEnv{
		engine: engine,
		repo:   repo,
		rec:    rec,
		events: events,
		conv:   models.NewConversation("sess-1"),
	}
}

func (env *testEnv) turn(t *testing.T, input string) *Result {
	t.Helper()
	result, err := env.engine.ProcessTurn(context.Background(), env.conv, input)
	require.NoError(t, err)
	require.NotEmpty(t, result.Messages)
	return result
}

// advanceToDepartment drives the identity phase with valid inputs.
func (env *testEnv) advanceToDepartment(t *testing.T) {
	t.Helper()
	env.turn(t, "Ayşe")
	env.turn(t, "Yılmaz")
	env.turn(t, "ayse@test.com")
	env.turn(t, "05551234567")
}

// advanceToRecommendations additionally answers the qualification questions.
func (env *testEnv) advanceToRecommendations(t *testing.T) {
	t.Helper()
	env.advanceToDepartment(t)
	env.turn(t, "Bilgisayar Mühendisliği")
	env.turn(t, "Sertifika Programları")
	env.turn(t, "Başlangıç")
	env.turn(t, "Haftada 2-4 saat")
}

func TestStepOrder(t *testing.T) {
	env := newTestEnv(t)

	inputs := []struct {
		input    string
		wantStep models.Step
	}{
		{"Ayşe", models.StepSurname},
		{"Yılmaz", models.StepEmail},
		{"ayse@test.com", models.StepPhone},
		{"05551234567", models.StepDepartment},
		{"Bilgisayar Mühendisliği", models.StepInterest},
		{"Sertifika Programları", models.StepLevel},
		{"Başlangıç", models.StepTime},
		{"Haftada 2-4 saat", models.StepRecommendations},
	}

	for _, step := range inputs {
		env.turn(t, step.input)
		assert.Equal(t, step.wantStep, env.conv.Step, "after input %q", step.input)
	}
}

func TestFullConversation(t *testing.T) {
	env := newTestEnv(t)
	env.advanceToDepartment(t)

	assert.Equal(t, models.Identity{
		Name:    "Ayşe",
		Surname: "Yılmaz",
		Email:   "ayse@test.com",
		Phone:   "05551234567",
	}, env.conv.Identity)

	result := env.turn(t, "Bilgisayar Mühendisliği")
	assert.Equal(t, 1, env.repo.upsertCalls)
	assert.Equal(t, "user-1", env.conv.UserID)
	assert.Contains(t, result.Messages[0].Text, "Bilgisayar Mühendisliği bölümünde")

	env.turn(t, "Sertifika Programları")
	env.turn(t, "Başlangıç")
	result = env.turn(t, "Haftada 2-4 saat")

	assert.Equal(t, 1, env.repo.updateCalls)
	assert.Equal(t, matcher.Query{
		Department: "Bilgisayar Mühendisliği",
		Interest:   "Sertifika Programları",
		Level:      "Başlangıç",
		Time:       "Haftada 2-4 saat",
	}, env.rec.lastQuery)

	// searching notice, count, two courses, campaign header, one campaign
	require.Len(t, result.Messages, 6)
	assert.Contains(t, result.Messages[1].Text, "2 eğitim programı buldum")
	assert.Contains(t, result.Messages[2].Text, "1. Python ile Veri Bilimi")
	assert.Contains(t, result.Messages[5].Text, "İndirim: %20")
	assert.Equal(t, RecommendationOptions, result.Messages[5].Options)

	require.Len(t, env.events.sessionCompleted, 1)
	require.NotNil(t, env.events.sessionCompleted[0].Completed)
	assert.True(t, *env.events.sessionCompleted[0].Completed)
}

func TestApplicationRedirect(t *testing.T) {
	env := newTestEnv(t)
	env.advanceToRecommendations(t)

	result := env.turn(t, "Başvuru yapmak istiyorum")

	assert.Equal(t, models.StepEnd, env.conv.Step)
	assert.Equal(t,
		"https://acadezone.com/basvuru?department=Bilgisayar+M%C3%BChendisli%C4%9Fi&ref=chatbot&user=user-1",
		result.RedirectURL)
	assert.Equal(t, []models.ContactRequestKind{models.ContactRequestApplication}, env.repo.contactKinds)
	assert.Equal(t, "user-1", env.repo.lastContactUser)
}

func TestInfoRequest(t *testing.T) {
	env := newTestEnv(t)
	env.advanceToRecommendations(t)

	result := env.turn(t, "Detaylı bilgi almak istiyorum")

	assert.Equal(t, models.StepEnd, env.conv.Step)
	assert.Empty(t, result.RedirectURL)
	assert.Contains(t, result.Messages[0].Text, "öğrenci işleri")
	assert.Equal(t, EndOptions, result.Messages[1].Options)
	assert.Equal(t, []models.ContactRequestKind{models.ContactRequestInfo}, env.repo.contactKinds)
	assert.Equal(t, []models.ContactRequestKind{models.ContactRequestInfo}, env.events.contactRequests)

	// completed at recommendations, resultedInContact at the request
	require.Len(t, env.events.sessionCompleted, 2)
	require.NotNil(t, env.events.sessionCompleted[1].ResultedInContact)
	assert.True(t, *env.events.sessionCompleted[1].ResultedInContact)
}

func TestEmailValidationGate(t *testing.T) {
	env := newTestEnv(t)
	env.turn(t, "Ayşe")
	env.turn(t, "Yılmaz")

	for _, bad := range []string{"not-an-email", "a@b", "a b@test.com", "a@test."} {
		result := env.turn(t, bad)
		assert.Equal(t, models.StepEmail, env.conv.Step, "input %q must not advance", bad)
		assert.Equal(t, "Geçerli bir e-posta adresi giriniz.", result.Messages[0].Text)
	}

	env.turn(t, "ayse@test.com")
	assert.Equal(t, models.StepPhone, env.conv.Step)
	assert.Equal(t, "ayse@test.com", env.conv.Identity.Email)
}

func TestPhoneValidationGate(t *testing.T) {
	env := newTestEnv(t)
	env.turn(t, "Ayşe")
	env.turn(t, "Yılmaz")
	env.turn(t, "ayse@test.com")

	// 14 digits
	result := env.turn(t, "05551234567890")
	assert.Equal(t, models.StepPhone, env.conv.Step)
	assert.Contains(t, result.Messages[0].Text, "10-11 rakam")

	// 9 digits
	env.turn(t, "555123456")
	assert.Equal(t, models.StepPhone, env.conv.Step)

	// formatting stripped before counting
	env.turn(t, "0555 123 45 67")
	assert.Equal(t, models.StepDepartment, env.conv.Step)
	assert.Equal(t, "0555 123 45 67", env.conv.Identity.Phone)
}

func TestOptionStepsRejectFreeText(t *testing.T) {
	env := newTestEnv(t)
	env.advanceToDepartment(t)
	env.turn(t, "Psikoloji")

	result := env.turn(t, "bilmiyorum")

	assert.Equal(t, models.StepInterest, env.conv.Step)
	assert.Empty(t, env.conv.Answers)
	assert.Equal(t, "Anlamadım. Lütfen tekrar deneyin.", result.Messages[0].Text)
	assert.Equal(t, InterestOptions, result.Messages[1].Options)

	// valid answer still accepted after the reject
	env.turn(t, "Hepsi")
	assert.Equal(t, "Hepsi", env.conv.Answers[models.AnswerInterest])
	assert.Equal(t, models.StepLevel, env.conv.Step)
}

func TestEmptyInputRejected(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.engine.ProcessTurn(context.Background(), env.conv, "   ")
	require.NoError(t, err)
	assert.Equal(t, models.StepWelcome, env.conv.Step)
	assert.Equal(t, "Anlamadım. Lütfen tekrar deneyin.", result.Messages[0].Text)
	assert.Zero(t, env.conv.MessageCount)
}

func TestDepartmentAcceptsFreeText(t *testing.T) {
	env := newTestEnv(t)
	env.advanceToDepartment(t)

	env.turn(t, "Endüstri Tasarımı")

	assert.Equal(t, models.StepInterest, env.conv.Step)
	assert.Equal(t, "Endüstri Tasarımı", env.conv.Department)
	assert.Equal(t, "Endüstri Tasarımı", env.repo.lastDepartment)
}

func TestPersistFailureStillAdvances(t *testing.T) {
	env := newTestEnv(t)
	env.repo.upsertErr = errors.New("db down")
	env.advanceToDepartment(t)

	env.turn(t, "Psikoloji")

	assert.Equal(t, models.StepInterest, env.conv.Step)
	assert.Empty(t, env.conv.UserID)
}

func TestNoResultsRetryClearsAnswers(t *testing.T) {
	env := newTestEnv(t)
	env.rec.result = &models.MatchResult{Courses: []models.Course{}, Campaigns: []models.Campaign{}}
	env.advanceToRecommendations(t)

	require.Equal(t, models.StepNoResults, env.conv.Step)

	result := env.turn(t, "Evet")
	assert.Equal(t, models.StepInterest, env.conv.Step)
	assert.Empty(t, env.conv.Answers)
	assert.Contains(t, result.Messages[0].Text, "Bilgisayar Mühendisliği bölümünde")
}

func TestNoResultsDeclined(t *testing.T) {
	env := newTestEnv(t)
	env.rec.result = &models.MatchResult{Courses: []models.Course{}, Campaigns: []models.Campaign{}}
	env.advanceToRecommendations(t)

	result := env.turn(t, "Hayır")
	assert.Equal(t, models.StepEnd, env.conv.Step)
	assert.Equal(t, EndOptions, result.Messages[0].Options)
}

func TestEndLoopsBackToDepartment(t *testing.T) {
	env := newTestEnv(t)
	env.advanceToRecommendations(t)
	env.turn(t, "Detaylı bilgi almak istiyorum")

	result := env.turn(t, "Evet, farklı bir bölüm hakkında soru sormak istiyorum")

	assert.Equal(t, models.StepDepartment, env.conv.Step)
	assert.Empty(t, env.conv.Answers)
	assert.Equal(t, DepartmentOptions, result.Messages[0].Options)
}

func TestEndGoodbyeEmitsEndTime(t *testing.T) {
	fixed := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return fixed }
	defer func() { timeNow = time.Now }()

	env := newTestEnv(t)
	env.advanceToRecommendations(t)
	env.turn(t, "Detaylı bilgi almak istiyorum")

	result := env.turn(t, "Hayır, teşekkürler")

	assert.Equal(t, models.StepEnd, env.conv.Step)
	assert.Contains(t, result.Messages[0].Text, "İyi günler dileriz")

	last := env.events.sessionCompleted[len(env.events.sessionCompleted)-1]
	require.NotNil(t, last.EndTime)
	assert.Equal(t, fixed, *last.EndTime)
}

func TestMatcherFailureStaysAtTime(t *testing.T) {
	env := newTestEnv(t)
	env.rec.err = errors.New("catalog unavailable")
	env.advanceToDepartment(t)
	env.turn(t, "Psikoloji")
	env.turn(t, "Hepsi")
	env.turn(t, "Hepsi")

	result := env.turn(t, "Esnek")

	assert.Equal(t, models.StepTime, env.conv.Step)
	assert.Contains(t, result.Messages[0].Text, "bir sorun oluştu")
	assert.Equal(t, TimeOptions, result.Messages[1].Options)

	// a retry after recovery succeeds
	env.rec.err = nil
	env.turn(t, "Esnek")
	assert.Equal(t, models.StepRecommendations, env.conv.Step)
}

func TestWildcardAnswersReachMatcherUnfiltered(t *testing.T) {
	env := newTestEnv(t)
	env.advanceToDepartment(t)
	env.turn(t, "Psikoloji")
	env.turn(t, "Hepsi")
	env.turn(t, "Hepsi")
	env.turn(t, "Esnek")

	assert.Equal(t, matcher.Query{
		Department: "Psikoloji",
		Interest:   "Hepsi",
		Level:      "Hepsi",
		Time:       "Esnek",
	}, env.rec.lastQuery)
}

func TestAnswersOverwriteNotDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.rec.result = &models.MatchResult{Courses: []models.Course{}, Campaigns: []models.Campaign{}}
	env.advanceToRecommendations(t)
	env.turn(t, "Evet")

	// second pass through the qualification questions
	env.turn(t, "Akademik Kariyer")
	env.turn(t, "İleri")
	env.turn(t, "Haftada 10+ saat")

	assert.Len(t, env.repo.lastAnswers, 3)
	assert.Equal(t, "Akademik Kariyer", env.repo.lastAnswers[models.AnswerInterest])
	assert.Equal(t, "İleri", env.repo.lastAnswers[models.AnswerLevel])
	assert.Equal(t, "Haftada 10+ saat", env.repo.lastAnswers[models.AnswerTime])
}

func TestStepCompletedEventAtDepartment(t *testing.T) {
	env := newTestEnv(t)
	env.advanceToDepartment(t)
	env.turn(t, "Psikoloji")

	require.Len(t, env.events.stepCompleted, 1)
	event := env.events.stepCompleted[0]
	assert.Equal(t, "sess-1", event.SessionID)
	assert.Equal(t, "user-1", event.UserID)
	assert.Equal(t, "Psikoloji", event.Department)
	assert.Equal(t, 5, event.MessageCount)
}

func TestUnknownStepIsAnError(t *testing.T) {
	env := newTestEnv(t)
	env.conv.Step = models.Step("teleport")

	_, err := env.engine.ProcessTurn(context.Background(), env.conv, "merhaba")
	require.Error(t, err)

	var stdErr *commonerrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, commonerrors.ErrCodeValidationFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "teleport")
}
