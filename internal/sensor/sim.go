package sensor

import (
	"context"
	"sync"
)

// Simulated is an in-memory module. Fingers are opaque keys; a finger whose
// key is negative images fine but yields unusable features.
type Simulated struct {
	mu        sync.Mutex
	linked    bool
	templates map[int]int
	touches   []int
	image     int
	hasImage  bool
	slots     [3]int
	model     int
	hasModel  bool
}

// NewSimulated returns a linked module with each id enrolled to the finger
// of the same key.
func NewSimulated(enrolled ...int) *Simulated {
	s := &Simulated{linked: true, templates: make(map[int]int)}
	for _, id := range enrolled {
		s.templates[id] = id
	}
	return s
}

// SetLinked toggles whether VerifyLink succeeds.
func (s *Simulated) SetLinked(ok bool) {
	s.mu.Lock()
	s.linked = ok
	s.mu.Unlock()
}

// Touch queues fingers to be seen by successive CaptureImage calls.
func (s *Simulated) Touch(fingers ...int) {
	s.mu.Lock()
	s.touches = append(s.touches, fingers...)
	s.mu.Unlock()
}

// Enrolled reports whether a template is stored under id.
func (s *Simulated) Enrolled(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.templates[id]
	return ok
}

func (s *Simulated) VerifyLink(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.linked
}

func (s *Simulated) CaptureImage(context.Context) Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.touches) == 0 {
		return NoFinger
	}
	s.image, s.touches = s.touches[0], s.touches[1:]
	s.hasImage = true
	return OK
}

func (s *Simulated) ExtractFeatures(_ context.Context, slot int) Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasImage {
		return ImageFail
	}
	if slot != SlotFirst && slot != SlotSecond {
		return FeatureFail
	}
	s.hasImage = false
	if s.image < 0 {
		return FeatureFail
	}
	s.slots[slot] = s.image
	return OK
}

func (s *Simulated) Search(context.Context) (int, Code) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, finger := range s.templates {
		if finger == s.slots[SlotFirst] {
			return id, OK
		}
	}
	return 0, NotFound
}

func (s *Simulated) CreateTemplate(context.Context) Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slots[SlotFirst] == 0 || s.slots[SlotFirst] != s.slots[SlotSecond] {
		return EnrollMismatch
	}
	s.model, s.hasModel = s.slots[SlotFirst], true
	return OK
}

func (s *Simulated) StoreTemplate(_ context.Context, id int) Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasModel || id <= 0 {
		return StoreFail
	}
	s.templates[id] = s.model
	s.hasModel = false
	return OK
}

func (s *Simulated) DeleteTemplate(_ context.Context, id int) Code {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		return DeleteFail
	}
	delete(s.templates, id)
	return OK
}
