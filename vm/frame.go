package vm

// callFrame records what Return needs to unwind a Call: the instruction
// to resume at, the evaluation-stack depth to truncate back to once the
// output values are lifted off, and the data-memory frame base the
// callee's Load/Store addresses were relative to.
type callFrame struct {
	returnIndex int
	frameBase   int
	stackDepth  int
}

type callStack struct {
	frames []callFrame
}

func (s *callStack) push(f callFrame) { s.frames = append(s.frames, f) }

func (s *callStack) pop() (callFrame, bool) {
	if len(s.frames) == 0 {
		return callFrame{}, false
	}
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return f, true
}

func (s *callStack) depth() int { return len(s.frames) }
