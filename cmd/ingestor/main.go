package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/bootstrap"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/config"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/observability"
)

const handleTimeout = 5 * time.Second

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	cfg, err := config.Get()
	if err != nil {
		log.Fatal().Err(err).Msg("config invalid")
	}
	observability.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, observability.NewMetrics())
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap failed")
	}
	defer app.Close()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		hctx, cancel := context.WithTimeout(ctx, handleTimeout)
		defer cancel()
		reading, err := app.Services.Ingest.FromMQTT(hctx, msg.Topic(), msg.Payload())
		if err != nil {
			log.Error().Err(err).Str("topic", msg.Topic()).Msg("ingest failed")
			return
		}
		log.Debug().Int64("tank_id", reading.TankID).Float64("percentage", reading.Percentage).Msg("reading ingested")
	}

	if token := client.Subscribe(cfg.MQTTTopic, 1, handler); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("subscribe failed")
	}

	log.Info().Str("topic", cfg.MQTTTopic).Msg("ingestor running; Ctrl+C to stop")
	<-ctx.Done()
	log.Info().Msg("ingestor stopping")
}
