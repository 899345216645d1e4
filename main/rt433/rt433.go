package main

import (
	"context"
	"flag"
	"github.com/jd3nn1s/rt433"
	"github.com/jd3nn1s/rt433/config"
	"github.com/jd3nn1s/rt433/events"
	"github.com/jd3nn1s/rt433/forwarder"
	log "github.com/sirupsen/logrus"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var configFile = flag.String("config", "rt433.toml", "configuration file")
var testMode = flag.Bool("testmode", false, "simulate races instead of reading events")

func main() {
	log.SetLevel(log.InfoLevel)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal("unable to load configuration: ", err)
	}
	if err := setupLogging(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatal("unable to set up logging: ", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	queues := rt433.NewQueues()
	tp := rt433.NewTransponder(queues, &cfg.Profile, cfg.Options())

	wg := sync.WaitGroup{}
	portName, err := resolvePort(cfg)
	if err != nil {
		// handlers keep queueing, nothing drains
		log.WithField("err", err).Warn("no usable serial port, frames will not be sent")
	} else {
		tc := cfg.TransportConfig()
		tc.PortName = portName
		transport := rt433.NewTransport(tc, queues)

		if cfg.Mirror.Enabled() {
			fwder, err := forwarder.NewUDPForwarder(cfg.Mirror)
			if err != nil {
				log.Fatal("unable to start frame mirror: ", err)
			}
			defer fwder.Close()
			go fwder.Start(ctx)
			transport.AddForwarder(fwder)
		}

		log.WithField("port", portName).Info("starting transport")
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := rt433.Retry(ctx, transport, cfg.Serial.ReconnectDelay.Duration)
			log.Infof("transport done: %v", err)
		}()
	}

	switch {
	case *testMode:
		log.Info("test mode, simulating races")
		rt433.RunTestMode(ctx, tp, cfg.TestMode.Laps, cfg.TestMode.Interval.Duration)
	case cfg.MQTT.URL != "":
		src, err := events.NewMQTTSource(cfg.MQTT.URL, cfg.MQTT.ClientID, tp)
		if err != nil {
			log.Fatal("unable to create mqtt event source: ", err)
		}
		if err := src.Start(ctx); err != nil && err != context.Canceled {
			log.Error("mqtt event source: ", err)
		}
	default:
		log.Info("reading race events from stdin")
		// a blocked read on stdin does not see ctx
		go func() {
			if err := events.ReadStream(ctx, os.Stdin, tp); err != nil && err != context.Canceled {
				log.Error("event stream: ", err)
			}
			log.Info("event stream ended")
		}()
		<-ctx.Done()
	}

	cancel()
	wg.Wait()
}
