package ember

// FrameStats accumulates rendering statistics over one frame. Reset at
// BeginFrame, readable at any point during or after the frame.
type FrameStats struct {
	// DrawCalls counts GPU draw submissions.
	DrawCalls int

	// SpritesDrawn counts sprites (including glyphs and filled
	// rectangles) submitted this frame.
	SpritesDrawn int
}
