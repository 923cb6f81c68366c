package mapper

import (
	"encoding/json"

	"ai-chat-quota-be/internal/entity"
	"ai-chat-quota-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ChatMessageToEntity(c *model.ChatMessage) *entity.ChatMessage {
	if c == nil {
		return nil
	}

	var metadata entity.ChatMessageMetadata
	if len(c.Metadata) > 0 {
		// Rows written before metadata existed decode to the zero value.
		_ = json.Unmarshal(c.Metadata, &metadata)
	}

	return &entity.ChatMessage{
		Id:         c.Id,
		UserId:     c.UserId,
		Question:   c.Question,
		Answer:     c.Answer,
		TokensUsed: c.TokensUsed,
		Metadata:   metadata,
		CreatedAt:  c.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(c *entity.ChatMessage) (*model.ChatMessage, error) {
	if c == nil {
		return nil, nil
	}

	metadata, err := json.Marshal(c.Metadata)
	if err != nil {
		return nil, err
	}

	return &model.ChatMessage{
		Id:         c.Id,
		UserId:     c.UserId,
		Question:   c.Question,
		Answer:     c.Answer,
		TokensUsed: c.TokensUsed,
		Metadata:   datatypes.JSON(metadata),
		CreatedAt:  c.CreatedAt,
	}, nil
}
