// Package prompts holds the fixed table of system prompts a chat request can
// select by key.
package prompts

import "sort"

const DefaultKey = "default"

type Category string

const (
  CategoryGeneral       Category = "general"
  CategoryCode          Category = "code"
  CategoryWriting       Category = "writing"
  CategoryAnalysis      Category = "analysis"
  CategoryCreative      Category = "creative"
  CategoryFrenchStudent Category = "French_Student"
)

type Descriptor struct {
  Key           string      `json:"key"`
  Role          string      `json:"role"`
  Content       string      `json:"content"`
  Description   string      `json:"description"`
  Category      Category    `json:"category"`
}

// Registry is read-only once built.
type Registry struct {
  byKey     map[string]Descriptor
  keys      []string
}

// NewRegistry copies descriptors into a new Registry. One of them must use
// DefaultKey, otherwise Resolve would have nothing to fall back to.
func NewRegistry(descriptors ...Descriptor) *Registry {
  r := &Registry{byKey: make(map[string]Descriptor, len(descriptors))}
  for _, d := range descriptors {
    d.Role = "system"
    if _, dup := r.byKey[d.Key]; !dup {
      r.keys = append(r.keys, d.Key)
    }
    r.byKey[d.Key] = d
  }
  if _, ok := r.byKey[DefaultKey]; !ok {
    panic("prompts: registry built without a " + DefaultKey + " descriptor")
  }
  sort.SliceStable(r.keys, func(i, j int) bool {
    // default first, the rest alphabetical
    if r.keys[i] == DefaultKey {
      return true
    }
    if r.keys[j] == DefaultKey {
      return false
    }
    return r.keys[i] < r.keys[j]
  })
  return r
}

// Resolve never fails: unknown and empty keys yield the default descriptor.
func (r *Registry) Resolve(key string) Descriptor {
  if d, ok := r.byKey[key]; ok {
    return d
  }
  return r.byKey[DefaultKey]
}

func (r *Registry) List() []Descriptor {
  out := make([]Descriptor, 0, len(r.keys))
  for _, k := range r.keys {
    out = append(out, r.byKey[k])
  }
  return out
}

var builtin = NewRegistry(
  Descriptor{
    Key:          DefaultKey,
    Content:      "You are BATAI You are a helpful assistant that provides concise and accurate information.",
    Description:  "General-purpose AI assistant",
    Category:     CategoryGeneral,
  },
  Descriptor{
    Key: "coder",
    Content: "You are BATAI You are an expert programming assistant. You write clean, efficient code and provide detailed explanations. " +
      "You follow best practices and modern development standards. When writing code, you include proper error handling, " +
      "type safety, and necessary comments. You consider edge cases and potential performance implications.",
    Description:  "Expert programming assistant",
    Category:     CategoryCode,
  },
  Descriptor{
    Key: "writer",
    Content: "You are BATAI You are a skilled writing assistant. You help craft clear, engaging content while maintaining the user's voice " +
      "and intent. You can assist with various writing styles from academic to creative, focusing on proper structure, " +
      "grammar, and impactful communication.",
    Description:  "Writing and content assistant",
    Category:     CategoryWriting,
  },
  Descriptor{
    Key: "analyst",
    Content: "You are BATAI You are an analytical assistant specializing in data interpretation and problem-solving. You break down complex " +
      "problems into manageable components, identify patterns, and provide structured analysis with clear reasoning.",
    Description:  "Analysis and problem-solving expert",
    Category:     CategoryAnalysis,
  },
  Descriptor{
    Key: "creative",
    Content: "You are BATAI You are a creative assistant helping with imaginative tasks. You think outside the box, generate unique ideas, " +
      "and help develop creative concepts while maintaining practicality and usefulness.",
    Description:  "Creative ideation assistant",
    Category:     CategoryCreative,
  },
  Descriptor{
    Key: "french_student",
    Content: "You are BATAI You are a French student learning the language. You make occasional mistakes typical of a learner but strive to " +
      "improve your vocabulary and grammar. You ask questions when unsure and seek clarification to enhance your understanding.",
    Description:  "French language learner",
    Category:     CategoryFrenchStudent,
  },
)

// Builtin returns the process-wide registry.
func Builtin() *Registry {
  return builtin
}
