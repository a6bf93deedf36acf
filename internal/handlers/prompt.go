package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/slotter-org/batai-backend/internal/prompts"
)

type promptSummary struct {
  Key           string              `json:"key"`
  Description   string              `json:"description"`
  Category      prompts.Category    `json:"category"`
}

type PromptHandler struct {
  registry      *prompts.Registry
}

func NewPromptHandler(registry *prompts.Registry) *PromptHandler {
  return &PromptHandler{registry: registry}
}

// ListPrompts exposes the selectable keys. Prompt texts stay server-side.
func (ph *PromptHandler) ListPrompts(c *gin.Context) {
  descriptors := ph.registry.List()
  out := make([]promptSummary, 0, len(descriptors))
  for _, d := range descriptors {
    out = append(out, promptSummary{Key: d.Key, Description: d.Description, Category: d.Category})
  }
  c.JSON(http.StatusOK, gin.H{"prompts": out})
}
