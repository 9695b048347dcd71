package service

import (
	"context"
	"encoding/json"

	"github.com/bwmarrin/snowflake"
	"github.com/golang/snappy"
	"github.com/opencitizen/notifstore/internal/config"
	"github.com/opencitizen/notifstore/internal/content/codec"
	"github.com/opencitizen/notifstore/internal/content/domain"
	demanddomain "github.com/opencitizen/notifstore/internal/demand/domain"
	"github.com/opencitizen/notifstore/internal/genericstatus"
	statusdomain "github.com/opencitizen/notifstore/internal/status/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Codec     *codec.Codec
	StatusSvc statusdomain.Service
	Holder    *config.CodecHolder
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	codec     *codec.Codec
	statusSvc statusdomain.Service
	holder    *config.CodecHolder
}

func New(p Params) domain.Store {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("content.store"),
		genID:     p.GenID,
		repo:      p.Repo,
		codec:     p.Codec,
		statusSvc: p.StatusSvc,
		holder:    p.Holder,
	}
}

func (s *Service) PutAll(ctx context.Context, notification *demanddomain.Notification) ([]*domain.NotificationContent, error) {
	payloads := notification.Payloads
	var created []*domain.NotificationContent

	put := func(channel demanddomain.Channel, payload any) error {
		record, err := s.put(ctx, notification, channel, payload)
		if err != nil {
			return err
		}
		created = append(created, record)
		return nil
	}

	if payloads.SMS != nil {
		if err := put(demanddomain.ChannelSMS, payloads.SMS); err != nil {
			return nil, err
		}
	}
	if payloads.Backoffice != nil {
		if err := put(demanddomain.ChannelBackoffice, payloads.Backoffice); err != nil {
			return nil, err
		}
	}
	if len(payloads.BroadcastEmail) > 0 {
		if err := put(demanddomain.ChannelBroadcastEmail, payloads.BroadcastEmail); err != nil {
			return nil, err
		}
	}
	if payloads.MyDashboard != nil {
		if err := put(demanddomain.ChannelMyDashboard, payloads.MyDashboard); err != nil {
			return nil, err
		}
	}
	if payloads.CustomerEmail != nil {
		if err := put(demanddomain.ChannelCustomerEmail, payloads.CustomerEmail); err != nil {
			return nil, err
		}
	}

	return created, nil
}

func (s *Service) put(ctx context.Context, notification *demanddomain.Notification, channel demanddomain.Channel, payload any) (*domain.NotificationContent, error) {
	encoded, err := s.codec.Encode(payload)
	if err != nil {
		return nil, err
	}

	record := &domain.NotificationContent{
		ID:              s.genID.Generate(),
		NotificationID:  notification.ID,
		Channel:         string(channel),
		StatusID:        -1,
		GenericStatusID: int(genericstatus.Unknown),
		Content:         encoded,
	}

	if channel == demanddomain.ChannelMyDashboard && notification.Payloads.MyDashboard != nil {
		dashboard := notification.Payloads.MyDashboard

		statusRecord, err := s.statusSvc.Register(ctx, dashboard.StatusText)
		if err != nil {
			return nil, err
		}
		if statusRecord != nil {
			record.StatusID = statusRecord.ID
		}

		resolution, err := s.statusSvc.Resolve(ctx, dashboard.StatusID, dashboard.StatusText)
		if err != nil {
			return nil, err
		}
		record.GenericStatusID = resolution.GenericStatusID
	}

	if err := s.repo.Insert(ctx, s.db, record); err != nil {
		return nil, err
	}
	return record, nil
}

// GetAll rebuilds the typed payloads of a notification. Decode failures are
// logged and the corresponding field is left empty so read paths never fail
// on a single corrupted blob.
func (s *Service) GetAll(ctx context.Context, notificationID int64, channels ...demanddomain.Channel) (demanddomain.Payloads, error) {
	names := make([]string, 0, len(channels))
	for _, c := range channels {
		names = append(names, string(c))
	}

	rows, err := s.repo.ListByNotification(ctx, s.db, notificationID, names)
	if err != nil {
		return demanddomain.Payloads{}, err
	}

	var payloads demanddomain.Payloads
	for _, row := range rows {
		if err := s.decodeInto(&payloads, row); err != nil {
			s.log.Warn("undecodable notification content",
				zap.Int64("notification_id", notificationID),
				zap.String("channel", row.Channel),
				zap.Error(err),
			)
		}
	}
	return payloads, nil
}

func (s *Service) decodeInto(payloads *demanddomain.Payloads, row *domain.NotificationContent) error {
	switch demanddomain.Channel(row.Channel) {
	case demanddomain.ChannelSMS:
		var p demanddomain.SMSPayload
		if err := s.codec.Decode(row.Content, &p); err != nil {
			return err
		}
		payloads.SMS = &p
	case demanddomain.ChannelCustomerEmail:
		var p demanddomain.EmailPayload
		if err := s.codec.Decode(row.Content, &p); err != nil {
			return err
		}
		payloads.CustomerEmail = &p
	case demanddomain.ChannelBackoffice:
		var p demanddomain.BackofficePayload
		if err := s.codec.Decode(row.Content, &p); err != nil {
			return err
		}
		payloads.Backoffice = &p
	case demanddomain.ChannelBroadcastEmail:
		var p []demanddomain.BroadcastPayload
		if err := s.codec.Decode(row.Content, &p); err != nil {
			return err
		}
		payloads.BroadcastEmail = p
	case demanddomain.ChannelMyDashboard:
		var p demanddomain.DashboardPayload
		if err := s.codec.Decode(row.Content, &p); err != nil {
			return err
		}
		payloads.MyDashboard = &p
	default:
		return domain.ErrUnknownChannel
	}
	return nil
}

func (s *Service) DeleteByNotification(ctx context.Context, notificationID int64) error {
	return s.repo.DeleteByNotification(ctx, s.db, notificationID)
}

// Reencode rewrites every blob from the currently configured decompress
// setting to the target compress setting, then flips the active toggles so
// subsequent reads and writes match the migrated store.
func (s *Service) Reencode(ctx context.Context, compress bool) (int64, error) {
	rows, err := s.repo.ListAll(ctx, s.db)
	if err != nil {
		return 0, err
	}

	wasCompressed := s.holder.Current().Decompress
	var rewritten int64
	for _, row := range rows {
		data := row.Content
		if wasCompressed {
			decoded, err := snappy.Decode(nil, data)
			if err != nil {
				s.log.Warn("skipping undecodable content during re-encode",
					zap.Int64("content_id", int64(row.ID)),
					zap.Error(err),
				)
				continue
			}
			data = decoded
		}
		if !json.Valid(data) {
			s.log.Warn("skipping non-JSON content during re-encode",
				zap.Int64("content_id", int64(row.ID)),
			)
			continue
		}
		if compress {
			data = snappy.Encode(nil, data)
		}
		if err := s.repo.UpdateContent(ctx, s.db, row.ID, data); err != nil {
			return rewritten, err
		}
		rewritten++
	}

	s.holder.Set(config.CodecConfig{Compress: compress, Decompress: compress})
	s.log.Info("re-encoded notification contents",
		zap.Int64("rewritten", rewritten),
		zap.Bool("compress", compress),
	)
	return rewritten, nil
}
