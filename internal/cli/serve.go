package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// newServeCommand creates the serve command.
func newServeCommand(e *env) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP",
		Long: `Serve the board over HTTP until interrupted.

Endpoints:
  GET|POST|DELETE  /tasks, /tasks/:id
  GET|POST|DELETE  /epics, /epics/:id
  GET              /epics/:id/subtask
  GET|POST|DELETE  /subtasks, /subtasks/:id
  GET              /history
  GET              /prioritized

POST with "id": 0 creates an item; any other id updates it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := e.container()
			if err != nil {
				return err
			}
			gin.SetMode(gin.ReleaseMode)
			srv, err := c.HTTPServer(addr)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: [server] addr from config)")
	return cmd
}
