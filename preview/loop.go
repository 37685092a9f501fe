package preview

import (
	"context"
	"log"
	"time"

	"github.com/ruslanjabari/video-to-ascii/player"
	"github.com/ruslanjabari/video-to-ascii/render"
	"github.com/ruslanjabari/video-to-ascii/video"
)

// previewSink feeds composed frames into the broadcast queue. Plain
// newline endings keep the payload readable inside a <pre> block.
type previewSink struct {
	server *Server
}

func (p *previewSink) Preamble() []byte { return nil }

func (p *previewSink) WriteFrame(data []byte) error {
	p.server.BroadcastFrame(string(data))
	return nil
}

func (p *previewSink) Complete() []byte { return nil }

func (p *previewSink) LineEnding() render.LineEnding {
	return render.LineNewline
}

// RunLoop renders the video on repeat into the preview broadcast queue.
// The loop owns its strategy instance; it is one playback stream shared
// by all preview viewers.
func (s *Server) RunLoop(ctx context.Context, path string, kind render.Kind) {
	dims := render.Dimensions{Columns: 80, Rows: 24}
	for ctx.Err() == nil {
		src, err := video.Open(path)
		if err != nil {
			log.Printf("Preview loop: %v", err)
			return
		}
		scheduler := player.NewScheduler(
			render.New(kind),
			func() render.Dimensions { return dims },
			player.NewClock(src.Fps()),
		)
		if err := scheduler.Run(ctx, src, &previewSink{server: s}); err != nil {
			if ctx.Err() == nil {
				log.Printf("Preview loop ended: %v", err)
			}
			return
		}
		// brief pause before replaying from the start
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}
