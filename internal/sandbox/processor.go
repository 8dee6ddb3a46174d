package sandbox

import (
	"context"
	"time"
)

// Run processa as notas pendentes a cada intervalo até o contexto ser cancelado
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.WithField("interval", interval.String()).Info("sandbox: processamento de notas iniciado")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sandbox: processamento de notas encerrado")
			return
		case <-ticker.C:
			if n := s.Process(); n > 0 {
				s.logger.WithField("notas", n).Debug("sandbox: ciclo de processamento")
			}
		}
	}
}
