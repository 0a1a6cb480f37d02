package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/orbitcheck/internal/logging"
	sc "github.com/dmitrijs2005/orbitcheck/internal/server/config"
	"github.com/dmitrijs2005/orbitcheck/internal/server/models"
	"github.com/dmitrijs2005/orbitcheck/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return s3.NewPresignClient(c).PresignGetObject(ctx, in, optFns...)
	}
)

var exportHeader = []string{
	"registration_id", "orbit_id", "name", "email", "college",
	"attendance_status", "check_in_time", "checked_in_by",
}

// ExportResult points at an uploaded attendance report.
type ExportResult struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Rows int    `json:"rows"`
}

// ExportService renders an event's roster with attendance as CSV and
// uploads it to object storage.
type ExportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	log         logging.Logger
	now         func() time.Time
}

func NewExportService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config, log logging.Logger) *ExportService {
	return &ExportService{db: db, repomanager: m, config: cfg, log: log.With("module", "export"), now: time.Now}
}

func (s *ExportService) getS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

func (s *ExportService) storageKey(eventID string) string {
	d := s.now().UTC()
	return fmt.Sprintf("exports/%s/%s-%s.csv", eventID, d.Format("20060102T150405Z"), uuid.NewString())
}

// Export uploads the CSV and returns its key and a presigned GET URL.
func (s *ExportService) Export(ctx context.Context, eventID string) (*ExportResult, error) {
	if _, err := s.repomanager.Events(s.db).GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	regs, err := s.repomanager.Registrations(s.db).ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	body, err := renderCSV(regs)
	if err != nil {
		return nil, err
	}

	client, err := s.getS3Client(ctx)
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := s.storageKey(eventID)

	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/csv"),
	}); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	req, err := presignGetObject(client, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.ExportURLValidity))
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	s.log.Info(ctx, "attendance exported", "event_id", eventID, "key", key, "rows", len(regs))
	return &ExportResult{Key: key, URL: req.URL, Rows: len(regs)}, nil
}

func renderCSV(regs []models.Registration) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, r := range regs {
		var checkIn string
		if r.CheckInTime != nil {
			checkIn = r.CheckInTime.UTC().Format(time.RFC3339)
		}
		if err := w.Write([]string{
			r.ID, r.OrbitID, r.Name, r.Email, r.College,
			strconv.FormatBool(r.AttendanceStatus), checkIn, r.CheckedInBy,
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
