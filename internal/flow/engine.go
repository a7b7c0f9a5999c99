// internal/flow/engine.go
package flow

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"acadezone-chatbot/internal/analytics"
	commonerrors "acadezone-chatbot/internal/common/errors"
	"acadezone-chatbot/internal/common/logger"
	"acadezone-chatbot/internal/common/metrics"
	"acadezone-chatbot/internal/identity"
	"acadezone-chatbot/internal/matcher"
	"acadezone-chatbot/internal/models"
)

var (
	emailPattern    = regexp.MustCompile(`^[\w-]+(\.[\w-]+)*@([\w-]+\.)+[A-Za-z]{2,7}$`)
	nonDigitPattern = regexp.MustCompile(`\D`)

	// swapped in tests
	timeNow = time.Now
)

// Message is one bot utterance. Options, when present, are the accepted
// answers for the next turn.
type Message struct {
	Text    string   `json:"text"`
	Options []string `json:"options,omitempty"`
}

// Result is the outcome of one processed turn.
type Result struct {
	Messages    []Message `json:"messages"`
	RedirectURL string    `json:"redirectUrl,omitempty"`
}

// Recommender runs the course/campaign match for the collected answers.
type Recommender interface {
	Match(ctx context.Context, query matcher.Query) (*models.MatchResult, error)
}

// ContactNotifier alerts the sales team about a new contact request.
type ContactNotifier interface {
	NotifyContactRequest(ctx context.Context, ident models.Identity, department string, kind models.ContactRequestKind) error
}

// LeadPusher forwards the lead to an external CRM.
type LeadPusher interface {
	PushLead(ctx context.Context, ident models.Identity, department string) error
}

// Engine drives the intake dialogue. Each turn takes the stored conversation
// and one user input, mutates the conversation, and returns the bot reply.
// The step set is closed; ProcessTurn handles every member exhaustively and
// rejects anything else.
type Engine struct {
	recommender Recommender
	identities  identity.Repository
	events      analytics.Sink
	notifier    ContactNotifier
	crm         LeadPusher
	appBaseURL  string
	logger      logger.Logger
}

type Options struct {
	Recommender Recommender
	Identities  identity.Repository
	Events      analytics.Sink
	Notifier    ContactNotifier
	CRM         LeadPusher

	// ApplicationBaseURL is the application form endpoint the apply branch
	// redirects to.
	ApplicationBaseURL string

	Logger logger.Logger
}

func NewEngine(opts Options) *Engine {
	events := opts.Events
	if events == nil {
		events = analytics.NopSink{}
	}
	return &Engine{
		recommender: opts.Recommender,
		identities:  opts.Identities,
		events:      events,
		notifier:    opts.Notifier,
		crm:         opts.CRM,
		appBaseURL:  opts.ApplicationBaseURL,
		logger:      opts.Logger.WithFields(map[string]interface{}{"component": "flow"}),
	}
}

// ProcessTurn advances the conversation by one user input.
func (e *Engine) ProcessTurn(ctx context.Context, conv *models.Conversation, input string) (*Result, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return e.reject(conv, Message{Text: promptNotUnderstood}), nil
	}

	conv.MessageCount++
	metrics.ChatTurnsProcessed.WithLabelValues(string(conv.Step)).Inc()

	switch conv.Step {
	case models.StepWelcome:
		return e.handleWelcome(conv, input), nil
	case models.StepSurname:
		return e.handleSurname(conv, input), nil
	case models.StepEmail:
		return e.handleEmail(conv, input), nil
	case models.StepPhone:
		return e.handlePhone(conv, input), nil
	case models.StepDepartment:
		return e.handleDepartment(ctx, conv, input), nil
	case models.StepInterest:
		return e.handleInterest(conv, input), nil
	case models.StepLevel:
		return e.handleLevel(conv, input), nil
	case models.StepTime:
		return e.handleTime(ctx, conv, input), nil
	case models.StepRecommendations:
		return e.handleRecommendations(ctx, conv, input), nil
	case models.StepNoResults:
		return e.handleNoResults(conv, input), nil
	case models.StepEnd:
		return e.handleEnd(ctx, conv, input), nil
	default:
		return nil, commonerrors.NewValidationFailedError(
			fmt.Sprintf("unknown conversation step: %s", conv.Step))
	}
}

// reject counts a validation failure and re-prompts without advancing.
func (e *Engine) reject(conv *models.Conversation, messages ...Message) *Result {
	metrics.ChatValidationFailures.WithLabelValues(string(conv.Step)).Inc()
	return &Result{Messages: messages}
}

// rejectOption is the strict policy for option-bearing steps: unmatched
// input never falls through, the step re-prompts with its option list.
func (e *Engine) rejectOption(conv *models.Conversation, reprompt Message) *Result {
	return e.reject(conv,
		Message{Text: promptNotUnderstood},
		reprompt,
	)
}

func (e *Engine) handleWelcome(conv *models.Conversation, input string) *Result {
	conv.Identity.Name = input
	conv.Step = models.StepSurname
	return &Result{Messages: []Message{{Text: promptSurname}}}
}

func (e *Engine) handleSurname(conv *models.Conversation, input string) *Result {
	conv.Identity.Surname = input
	conv.Step = models.StepEmail
	return &Result{Messages: []Message{{Text: promptEmail}}}
}

func (e *Engine) handleEmail(conv *models.Conversation, input string) *Result {
	if !emailPattern.MatchString(input) {
		return e.reject(conv, Message{Text: promptEmailInvalid})
	}
	conv.Identity.Email = input
	conv.Step = models.StepPhone
	return &Result{Messages: []Message{{Text: promptPhone}}}
}

func (e *Engine) handlePhone(conv *models.Conversation, input string) *Result {
	digits := nonDigitPattern.ReplaceAllString(input, "")
	if len(digits) < 10 || len(digits) > 11 {
		return e.reject(conv, Message{Text: promptPhoneInvalid})
	}
	conv.Identity.Phone = input
	conv.Step = models.StepDepartment
	return &Result{Messages: []Message{
		{Text: promptDepartment, Options: DepartmentOptions},
	}}
}

// handleDepartment accepts free text: unknown departments are created on
// save, the option list is only a suggestion. The lead is persisted here,
// synchronously, so a later abandon still leaves a usable contact record.
// Persistence failure is logged and the flow advances anyway.
func (e *Engine) handleDepartment(ctx context.Context, conv *models.Conversation, input string) *Result {
	conv.Department = input

	userID, err := e.identities.UpsertUser(ctx, conv.Identity, input)
	if err != nil {
		e.logger.Warn("lead persist failed, continuing flow", map[string]interface{}{
			"sessionId": conv.SessionID,
			"error":     err.Error(),
		})
	} else {
		conv.UserID = userID
	}

	_ = e.events.StepCompleted(ctx, analytics.StepCompletedEvent{
		SessionID:    conv.SessionID,
		UserID:       conv.UserID,
		Department:   input,
		MessageCount: conv.MessageCount,
	})

	conv.Step = models.StepInterest
	return &Result{Messages: []Message{e.interestPrompt(conv)}}
}

func (e *Engine) interestPrompt(conv *models.Conversation) Message {
	return Message{
		Text:    fmt.Sprintf("%s bölümünde hangi alanlara ilgi duyuyorsunuz?", conv.Department),
		Options: InterestOptions,
	}
}

func (e *Engine) handleInterest(conv *models.Conversation, input string) *Result {
	if !optionMatches(InterestOptions, input) {
		return e.rejectOption(conv, e.interestPrompt(conv))
	}
	conv.Answers[models.AnswerInterest] = input
	conv.Step = models.StepLevel
	return &Result{Messages: []Message{
		{Text: promptLevel, Options: LevelOptions},
	}}
}

func (e *Engine) handleLevel(conv *models.Conversation, input string) *Result {
	if !optionMatches(LevelOptions, input) {
		return e.rejectOption(conv, Message{Text: promptLevel, Options: LevelOptions})
	}
	conv.Answers[models.AnswerLevel] = input
	conv.Step = models.StepTime
	return &Result{Messages: []Message{
		{Text: promptTime, Options: TimeOptions},
	}}
}

// handleTime closes the qualification phase: it stores the answers
// best-effort and runs the recommendation match. A matcher failure keeps the
// conversation at this step so the user can retry.
func (e *Engine) handleTime(ctx context.Context, conv *models.Conversation, input string) *Result {
	if !optionMatches(TimeOptions, input) {
		return e.rejectOption(conv, Message{Text: promptTime, Options: TimeOptions})
	}
	conv.Answers[models.AnswerTime] = input

	if conv.UserID != "" {
		if err := e.identities.UpdateSession(ctx, conv.UserID, conv.Department, conv.Answers); err != nil {
			e.logger.Warn("session persist failed, continuing flow", map[string]interface{}{
				"sessionId": conv.SessionID,
				"error":     err.Error(),
			})
		}
	}

	result, err := e.recommender.Match(ctx, matcher.Query{
		Department: conv.Department,
		Interest:   conv.Answers[models.AnswerInterest],
		Level:      conv.Answers[models.AnswerLevel],
		Time:       conv.Answers[models.AnswerTime],
	})
	if err != nil {
		e.logger.Error("recommendation match failed", map[string]interface{}{
			"sessionId": conv.SessionID,
			"error":     err.Error(),
		})
		return &Result{Messages: []Message{
			{Text: promptRecommendationError},
			{Text: promptTime, Options: TimeOptions},
		}}
	}

	conv.LastResultSet = result

	if len(result.Courses) == 0 {
		conv.Step = models.StepNoResults
		return &Result{Messages: []Message{
			{Text: promptSearching},
			{Text: promptNoResults, Options: NoResultsOptions},
		}}
	}

	conv.Step = models.StepRecommendations
	messages := []Message{
		{Text: promptSearching},
		{Text: fmt.Sprintf("Size uygun %d eğitim programı buldum:", len(result.Courses))},
	}
	for i, course := range result.Courses {
		messages = append(messages, Message{
			Text: fmt.Sprintf("%d. %s\n%s\n%s", i+1, course.Title, course.Description, course.URL),
		})
	}
	if len(result.Campaigns) > 0 {
		messages = append(messages, Message{Text: "Ayrıca şu anda aktif olan kampanyalarımız:"})
		for _, campaign := range result.Campaigns {
			messages = append(messages, Message{
				Text: fmt.Sprintf("%s: %s (İndirim: %%%d)", campaign.Title, campaign.Description, campaign.DiscountRate),
			})
		}
	}
	messages[len(messages)-1].Options = RecommendationOptions

	_ = e.events.SessionCompleted(ctx, analytics.SessionCompletedEvent{
		SessionID: conv.SessionID,
		Completed: analytics.Bool(true),
	})
	return &Result{Messages: messages}
}

func (e *Engine) handleRecommendations(ctx context.Context, conv *models.Conversation, input string) *Result {
	switch input {
	case optionInfo:
		e.createContactRequest(ctx, conv, models.ContactRequestInfo)
		conv.Step = models.StepEnd
		return &Result{Messages: []Message{
			{Text: promptInfoConfirm},
			{Text: promptAnythingElse, Options: EndOptions},
		}}

	case optionApply:
		e.createContactRequest(ctx, conv, models.ContactRequestApplication)
		conv.Step = models.StepEnd
		return &Result{
			Messages:    []Message{{Text: promptApplyRedirect}},
			RedirectURL: e.applicationURL(conv),
		}

	default:
		return e.rejectOption(conv, Message{Text: promptNotUnderstood, Options: RecommendationOptions})
	}
}

func (e *Engine) handleNoResults(conv *models.Conversation, input string) *Result {
	switch input {
	case optionYes:
		conv.ClearAnswers()
		conv.Step = models.StepInterest
		return &Result{Messages: []Message{e.interestPrompt(conv)}}

	case optionNo:
		conv.Step = models.StepEnd
		return &Result{Messages: []Message{
			{Text: promptAnythingElse, Options: EndOptions},
		}}

	default:
		return e.rejectOption(conv, Message{Text: promptNoResults, Options: NoResultsOptions})
	}
}

func (e *Engine) handleEnd(ctx context.Context, conv *models.Conversation, input string) *Result {
	switch input {
	case optionAskAnother:
		conv.ClearAnswers()
		conv.Step = models.StepDepartment
		return &Result{Messages: []Message{
			{Text: promptDepartmentAgain, Options: DepartmentOptions},
		}}

	case optionNoThanks:
		now := timeNow()
		_ = e.events.SessionCompleted(ctx, analytics.SessionCompletedEvent{
			SessionID: conv.SessionID,
			EndTime:   &now,
		})
		return &Result{Messages: []Message{{Text: promptGoodbye}}}

	default:
		return e.rejectOption(conv, Message{Text: promptAnythingElse, Options: EndOptions})
	}
}

// createContactRequest records the lead's intent and fans out to the sales
// channels. Only the database write is load-bearing; notification and CRM
// failures are logged and swallowed.
func (e *Engine) createContactRequest(ctx context.Context, conv *models.Conversation, kind models.ContactRequestKind) {
	if conv.UserID == "" {
		e.logger.Warn("contact request skipped, no persisted user", map[string]interface{}{
			"sessionId": conv.SessionID,
			"kind":      string(kind),
		})
		return
	}

	if _, err := e.identities.CreateContactRequest(ctx, conv.UserID, kind); err != nil {
		e.logger.Error("contact request persist failed", map[string]interface{}{
			"sessionId": conv.SessionID,
			"userId":    conv.UserID,
			"kind":      string(kind),
			"error":     err.Error(),
		})
		return
	}
	metrics.ChatContactRequests.WithLabelValues(string(kind)).Inc()

	_ = e.events.ContactRequestCreated(ctx, conv.UserID, kind)
	_ = e.events.SessionCompleted(ctx, analytics.SessionCompletedEvent{
		SessionID:         conv.SessionID,
		ResultedInContact: analytics.Bool(true),
	})

	if e.notifier != nil {
		if err := e.notifier.NotifyContactRequest(ctx, conv.Identity, conv.Department, kind); err != nil {
			e.logger.Warn("sales notification failed", map[string]interface{}{
				"userId": conv.UserID,
				"kind":   string(kind),
				"error":  err.Error(),
			})
		}
	}
	if e.crm != nil {
		if err := e.crm.PushLead(ctx, conv.Identity, conv.Department); err != nil {
			e.logger.Warn("crm push failed", map[string]interface{}{
				"userId": conv.UserID,
				"error":  err.Error(),
			})
		}
	}
}

func (e *Engine) applicationURL(conv *models.Conversation) string {
	return fmt.Sprintf("%s?department=%s&ref=chatbot&user=%s",
		e.appBaseURL, url.QueryEscape(conv.Department), url.QueryEscape(conv.UserID))
}
