package main

import (
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/config"
	"github.com/ANIKETSHETTY47/tank-level-monitoring-system/internal/service"
)

func main() {
	tankID := flag.Int64("tank", 1, "tank id to report for")
	height := flag.Float64("height", 100, "tank height in cm")
	count := flag.Int("count", 100, "number of readings to publish")
	interval := flag.Duration("interval", 500*time.Millisecond, "delay between readings")
	flag.Parse()

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	opts := mqtt.NewClientOptions().AddBroker(config.MQTTBroker())
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	// the tank drains slowly and is refilled when it gets low
	level := *height * 0.9
	for i := 0; i < *count; i++ {
		level -= rand.Float64() * *height * 0.02
		if level < *height*0.1 {
			level = *height * 0.9
		}
		ts := time.Now().UTC()
		temp := 15 + rand.Float64()*10
		msg := service.SensorMessage{
			TankID:           *tankID,
			LiquidLevel:      &level,
			Temperature:      &temp,
			ReadingTimestamp: &ts,
			RawData:          json.RawMessage(`{"source":"simulator","seq":` + strconv.Itoa(i) + `}`),
		}
		payload, err := json.Marshal(msg)
		if err != nil {
			log.Fatal().Err(err).Msg("encode reading")
		}
		token := client.Publish(config.MQTTTopic(), 1, false, payload)
		token.Wait()
		if err := token.Error(); err != nil {
			log.Error().Err(err).Msg("publish failed")
		}
		time.Sleep(*interval)
	}
	log.Info().Int("published", *count).Msg("simulation done")
}
