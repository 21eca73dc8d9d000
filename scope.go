package main

import "github.com/llir/llvm/ir"

// Scope maps variable names to their stack slots. Bindings shadow earlier
// ones of the same name; Mark and Restore undo every change made after the
// mark, so a nested construct can bind freely and put the outer view back
// when it exits:
//
//	mark := scope.Mark()
//	defer scope.Restore(mark)
type Scope struct {
	slots map[string]*ir.InstAlloca
	undo  []undoEntry
}

type undoEntry struct {
	name string
	prev *ir.InstAlloca // nil if the name was unbound
}

func NewScope() *Scope {
	return &Scope{slots: make(map[string]*ir.InstAlloca)}
}

// Bind makes name refer to slot until the enclosing mark is restored.
func (s *Scope) Bind(name string, slot *ir.InstAlloca) {
	s.undo = append(s.undo, undoEntry{name: name, prev: s.slots[name]})
	s.slots[name] = slot
}

func (s *Scope) Lookup(name string) (*ir.InstAlloca, bool) {
	slot, ok := s.slots[name]
	return slot, ok
}

func (s *Scope) Mark() int {
	return len(s.undo)
}

// Restore unwinds bindings made since mark, newest first.
func (s *Scope) Restore(mark int) {
	for i := len(s.undo) - 1; i >= mark; i-- {
		e := s.undo[i]
		if e.prev == nil {
			delete(s.slots, e.name)
		} else {
			s.slots[e.name] = e.prev
		}
	}
	s.undo = s.undo[:mark]
}
