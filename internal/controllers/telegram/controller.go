// Package telegram pushes scheduled crescent visibility alerts for the
// configured observing sites to a Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chrissnell/crescentwatch/internal/log"
	"github.com/chrissnell/crescentwatch/pkg/config"
	"github.com/chrissnell/crescentwatch/pkg/crescent"
	"github.com/go-co-op/gocron"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const defaultSchedule = "0 12 * * *" // daily at noon UTC, well before any sunset

// messageSender abstracts the Telegram bot API for testing
type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Controller computes tonight's crescent outlook for each configured
// location on a cron schedule and sends the summary to a Telegram chat.
type Controller struct {
	ctx            context.Context
	wg             *sync.WaitGroup
	configProvider config.ConfigProvider
	telegramConfig config.TelegramData
	engine         *crescent.Engine
	criterion      crescent.Criterion
	locations      []config.LocationData
	scheduler      *gocron.Scheduler
	sender         messageSender
	logger         *zap.SugaredLogger
}

// NewController creates a new Telegram alert controller
func NewController(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, tc config.TelegramData, engine *crescent.Engine, logger *zap.SugaredLogger) (*Controller, error) {
	if tc.BotToken == "" {
		return nil, fmt.Errorf("telegram.bot-token is required")
	}
	if tc.ChatID == 0 {
		return nil, fmt.Errorf("telegram.chat-id is required")
	}
	if tc.Schedule == "" {
		logger.Infof("telegram.schedule not provided; defaulting to %q", defaultSchedule)
		tc.Schedule = defaultSchedule
	}

	criterionName := tc.Criterion
	if criterionName == "" {
		criterionName = "yallop"
	}
	criterion, err := crescent.ParseCriterion(criterionName)
	if err != nil {
		return nil, err
	}

	locations, err := configProvider.GetLocations()
	if err != nil {
		return nil, fmt.Errorf("error loading locations: %v", err)
	}
	if len(locations) == 0 {
		return nil, fmt.Errorf("telegram controller requires at least one configured location")
	}

	return &Controller{
		ctx:            ctx,
		wg:             wg,
		configProvider: configProvider,
		telegramConfig: tc,
		engine:         engine,
		criterion:      criterion,
		locations:      locations,
		logger:         logger,
	}, nil
}

// StartController connects the bot and schedules the alert job
func (c *Controller) StartController() error {
	log.Info("Starting Telegram alert controller...")

	if c.sender == nil {
		bot, err := tgbotapi.NewBotAPI(c.telegramConfig.BotToken)
		if err != nil {
			return fmt.Errorf("could not connect to Telegram: %v", err)
		}
		log.Infof("Telegram bot authorized as %s", bot.Self.UserName)
		c.sender = bot
	}

	c.scheduler = gocron.NewScheduler(time.UTC)
	if _, err := c.scheduler.Cron(c.telegramConfig.Schedule).Do(c.sendCrescentAlert); err != nil {
		return fmt.Errorf("invalid telegram.schedule %q: %v", c.telegramConfig.Schedule, err)
	}
	c.scheduler.StartAsync()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		<-c.ctx.Done()
		log.Info("Shutting down the Telegram alert controller...")
		c.scheduler.Stop()
	}()

	return nil
}

func (c *Controller) sendCrescentAlert() {
	now := time.Now().UTC()
	text := c.buildAlertMessage(now.Year(), now.Month(), now.Day())

	msg := tgbotapi.NewMessage(c.telegramConfig.ChatID, text)
	if _, err := c.sender.Send(msg); err != nil {
		c.logger.Errorf("could not send Telegram alert: %v", err)
		return
	}
	c.logger.Infof("sent crescent alert for %d locations", len(c.locations))
}

// buildAlertMessage renders tonight's outlook for every configured location.
func (c *Controller) buildAlertMessage(year int, month time.Month, day int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Crescent outlook for %04d-%02d-%02d (%s criterion)\n", year, month, day, c.criterion)

	for _, loc := range c.locations {
		coord := crescent.GeoCoordinate{Lat: loc.Latitude, Lon: loc.Longitude}
		point := c.engine.EvaluateLocation(coord, year, month, day, crescent.GridOptions{Criterion: c.criterion})

		if point.SunsetUTC.IsZero() {
			fmt.Fprintf(&b, "%s: no sunset today\n", loc.Name)
			continue
		}
		fmt.Fprintf(&b, "%s: zone %s (%s), sunset %s UTC, lag %.0f min\n",
			loc.Name, point.Class.Zone, point.Class.Color,
			point.SunsetUTC.Format("15:04"), point.LagMin)
	}

	return b.String()
}
