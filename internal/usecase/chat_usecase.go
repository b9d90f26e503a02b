package usecase

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"gigspace/internal/domain/entity"
	"gigspace/internal/domain/repository"
	"gigspace/internal/infrastructure/changefeed"
	"gigspace/internal/infrastructure/queue"
	"gigspace/internal/infrastructure/ratelimit"
	"gigspace/internal/realtime"
	"gigspace/pkg/errors"
)

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	jobRepo     repository.JobRepository
	events      EventPublisher
	feed        FeedPublisher
	rateLimiter *ratelimit.RateLimiter
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	jobRepo repository.JobRepository,
	events EventPublisher,
	feed FeedPublisher,
	rateLimiter *ratelimit.RateLimiter,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		jobRepo:     jobRepo,
		events:      events,
		feed:        feed,
		rateLimiter: rateLimiter,
	}
}

type CreateConversationInput struct {
	RecipientID    string
	JobID          string
	InitialMessage string
}

type ConversationResponse struct {
	*entity.Conversation
	OtherUser *entity.User `json:"other_user,omitempty"`
}

type MessageResponse struct {
	*entity.Message
	Sender *entity.User `json:"sender,omitempty"`
}

// CreateConversation opens (or returns) the direct conversation between
// two users about a job. One conversation exists per job + participant
// pair; a second create returns the first.
func (uc *ChatUseCase) CreateConversation(ctx context.Context, userID string, input CreateConversationInput) (*ConversationResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "create_conversation")
	if !allowed {
		log.Printf("CreateConversation Rate Limited: User %s must wait %v", userID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before starting another conversation")
	}

	if userID == input.RecipientID {
		log.Printf("CreateConversation Error: User %s attempted a conversation with themselves", userID)
		return nil, errors.BadRequest("You cannot start a conversation with yourself", nil)
	}

	recipient, err := uc.userRepo.GetByID(ctx, input.RecipientID)
	if err != nil {
		log.Printf("CreateConversation Error: Recipient %s not found: %v", input.RecipientID, err)
		return nil, errors.NotFound("Recipient", err)
	}

	if input.JobID != "" {
		if _, err := uc.jobRepo.GetByID(ctx, input.JobID); err != nil {
			log.Printf("CreateConversation Error: Job %s not found: %v", input.JobID, err)
			return nil, errors.NotFound("Job", err)
		}
	}

	var conversation *entity.Conversation

	existing, err := uc.chatRepo.GetDirectConversation(ctx, input.JobID, []string{userID, input.RecipientID})
	if err == nil && existing != nil {
		conversation = existing
	} else {
		if err != nil && !errors.Is(err, "NOT_FOUND") {
			log.Printf("CreateConversation Error: Failed to search for existing conversation: %v", err)
			return nil, err
		}

		conversation = &entity.Conversation{
			Participants:  []string{userID, input.RecipientID},
			JobID:         input.JobID,
			Type:          "direct",
			UnreadCount:   make(map[string]int),
			LastMessageAt: time.Now(),
		}

		if err := uc.chatRepo.Create(ctx, conversation); err != nil {
			log.Printf("CreateConversation Error: Failed to create conversation: %v", err)
			return nil, err
		}
	}

	if input.InitialMessage != "" {
		if _, err := uc.SendMessage(ctx, userID, SendMessageInput{
			ConversationID: conversation.ID,
			Content:        input.InitialMessage,
			Type:           "text",
		}); err != nil {
			log.Printf("CreateConversation Error: Failed to send initial message for %s: %v", conversation.ID, err)
			return nil, err
		}
		conversation, err = uc.chatRepo.GetByID(ctx, conversation.ID)
		if err != nil {
			return nil, err
		}
	}

	return &ConversationResponse{
		Conversation: conversation,
		OtherUser:    recipient,
	}, nil
}

// CreateSupportConversation pairs a user with the admin team.
func (uc *ChatUseCase) CreateSupportConversation(ctx context.Context, userID string) (*entity.Conversation, error) {
	admins, _, err := uc.userRepo.List(ctx, "admin", 1, 0)
	if err != nil || len(admins) == 0 {
		log.Printf("CreateSupportConversation Error: No admin available: %v", err)
		return nil, errors.Internal("Support is not available right now", err)
	}

	existing, err := uc.chatRepo.GetDirectConversation(ctx, "", []string{userID, admins[0].ID})
	if err == nil && existing != nil && existing.Type == "support" {
		return existing, nil
	}

	conversation := &entity.Conversation{
		Participants:  []string{userID, admins[0].ID},
		Type:          "support",
		UnreadCount:   make(map[string]int),
		LastMessageAt: time.Now(),
	}
	if err := uc.chatRepo.Create(ctx, conversation); err != nil {
		log.Printf("CreateSupportConversation Error: %v", err)
		return nil, err
	}
	return conversation, nil
}

func (uc *ChatUseCase) ListConversations(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error) {
	return uc.chatRepo.ListByUserID(ctx, userID, limit, offset)
}

func (uc *ChatUseCase) GetConversation(ctx context.Context, userID, conversationID string) (*entity.Conversation, error) {
	conversation, err := uc.chatRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(conversation, userID) {
		return nil, errors.Forbidden("You are not part of this conversation", nil)
	}
	return conversation, nil
}

func (uc *ChatUseCase) GetMessages(ctx context.Context, userID, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	if _, err := uc.GetConversation(ctx, userID, conversationID); err != nil {
		return nil, 0, err
	}
	return uc.chatRepo.GetMessagesByConversation(ctx, conversationID, limit, offset)
}

type SendMessageInput struct {
	ConversationID string
	Content        string
	Type           string // "text", "offer", "system"
	Metadata       map[string]interface{}
}

func (uc *ChatUseCase) SendMessage(ctx context.Context, userID string, input SendMessageInput) (*MessageResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "send_message")
	if !allowed {
		log.Printf("SendMessage Rate Limited: User %s must wait %v", userID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please slow down")
	}

	conversation, err := uc.chatRepo.GetByID(ctx, input.ConversationID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(conversation, userID) {
		return nil, errors.Forbidden("You are not part of this conversation", nil)
	}

	sender, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}

	messageType := input.Type
	if messageType == "" {
		messageType = "text"
	}

	message := &entity.Message{
		ConversationID: conversation.ID,
		SenderID:       userID,
		SenderRole:     sender.Role,
		Content:        input.Content,
		Type:           messageType,
		Metadata:       input.Metadata,
		CreatedAt:      time.Now(),
	}

	if err := uc.chatRepo.CreateMessage(ctx, message); err != nil {
		log.Printf("SendMessage Error: Failed to create message in %s: %v", conversation.ID, err)
		return nil, err
	}

	conversation.LastMessage = message.Content
	conversation.LastMessageAt = message.CreatedAt
	if conversation.UnreadCount == nil {
		conversation.UnreadCount = make(map[string]int)
	}
	for _, participantID := range conversation.Participants {
		if participantID != userID {
			conversation.UnreadCount[participantID]++
		}
	}
	if err := uc.chatRepo.Update(ctx, conversation); err != nil {
		log.Printf("SendMessage Error: Failed to update conversation %s: %v", conversation.ID, err)
	}

	uc.publishMessageChange(ctx, changefeed.OpInsert, message)

	eventType := queue.EventMessageSent
	if messageType == "offer" {
		eventType = queue.EventOfferMade
	}
	for _, participantID := range conversation.Participants {
		if participantID == userID {
			continue
		}
		event := queue.DomainEvent{
			Type:           eventType,
			ActorID:        userID,
			RecipientID:    participantID,
			ConversationID: conversation.ID,
			MessageID:      message.ID,
			OccurredAt:     message.CreatedAt,
		}
		if amount, ok := input.Metadata["amount"].(float64); ok {
			event.Amount = amount
		}
		if err := uc.events.Publish(ctx, event); err != nil {
			log.Printf("SendMessage Error: Failed to publish %s for message %s: %v", eventType, message.ID, err)
		}
	}

	return &MessageResponse{
		Message: message,
		Sender:  sender,
	}, nil
}

type SendOfferInput struct {
	ConversationID string
	Content        string
	Amount         float64
}

// SendOffer sends an offer-typed message carrying the proposed amount.
func (uc *ChatUseCase) SendOffer(ctx context.Context, userID string, input SendOfferInput) (*MessageResponse, error) {
	if input.Amount <= 0 {
		return nil, errors.BadRequest("Offer amount must be positive", nil)
	}
	return uc.SendMessage(ctx, userID, SendMessageInput{
		ConversationID: input.ConversationID,
		Content:        input.Content,
		Type:           "offer",
		Metadata: map[string]interface{}{
			"amount": input.Amount,
		},
	})
}

// MarkConversationRead zeroes the caller's unread counter and flips every
// message addressed to them. Each flip goes out on the feed so other
// devices converge without a refetch.
func (uc *ChatUseCase) MarkConversationRead(ctx context.Context, userID, conversationID string) error {
	conversation, err := uc.chatRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !isParticipant(conversation, userID) {
		return errors.Forbidden("You are not part of this conversation", nil)
	}

	messages, _, err := uc.chatRepo.GetMessagesByConversation(ctx, conversationID, 0, 0)
	if err != nil {
		return err
	}
	for _, message := range messages {
		if message.Read || message.SenderID == userID {
			continue
		}
		if err := uc.chatRepo.MarkMessageRead(ctx, conversationID, message.ID); err != nil {
			log.Printf("MarkConversationRead Error: message %s: %v", message.ID, err)
			return err
		}
		message.Read = true
		uc.publishMessageChange(ctx, changefeed.OpUpdate, message)
	}

	if conversation.UnreadCount == nil {
		conversation.UnreadCount = make(map[string]int)
	}
	conversation.UnreadCount[userID] = 0
	if err := uc.chatRepo.Update(ctx, conversation); err != nil {
		log.Printf("MarkConversationRead Error: Failed to update conversation %s: %v", conversationID, err)
		return err
	}

	return nil
}

func (uc *ChatUseCase) MarkMessageRead(ctx context.Context, userID, conversationID, messageID string) error {
	conversation, err := uc.chatRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !isParticipant(conversation, userID) {
		return errors.Forbidden("You are not part of this conversation", nil)
	}

	message, err := uc.chatRepo.GetMessageByID(ctx, conversationID, messageID)
	if err != nil {
		return err
	}
	if message.Read {
		return nil
	}

	if err := uc.chatRepo.MarkMessageRead(ctx, conversationID, messageID); err != nil {
		return err
	}
	message.Read = true
	uc.publishMessageChange(ctx, changefeed.OpUpdate, message)

	return nil
}

func (uc *ChatUseCase) publishMessageChange(ctx context.Context, op string, message *entity.Message) {
	row, err := json.Marshal(message)
	if err != nil {
		return
	}
	topic := string(realtime.ConversationTopic(message.ConversationID))
	ev := changefeed.Event{Op: op, Table: changefeed.TableMessages, Row: row}
	if err := uc.feed.Publish(ctx, topic, ev); err != nil {
		log.Printf("Chat Feed Error: Failed to publish %s for message %s: %v", op, message.ID, err)
	}
}

func isParticipant(conversation *entity.Conversation, userID string) bool {
	for _, id := range conversation.Participants {
		if id == userID {
			return true
		}
	}
	return false
}
