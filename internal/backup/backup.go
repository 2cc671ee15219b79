// Package backup archives the user's own posts to S3-compatible object storage.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/debemdeboas/blogctl/internal/db"
	"github.com/debemdeboas/blogctl/internal/model"
	"github.com/debemdeboas/blogctl/internal/util"
	"github.com/debemdeboas/blogctl/internal/util/compression"
	"github.com/rs/zerolog"
)

var backupLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	backupLogger = l
}

var ErrUnchanged = errors.New("posts unchanged since last backup")

// Uploader is the part of the S3 client a backup needs.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Source interface {
	ListMyPosts(ctx context.Context) ([]model.Post, error)
}

// NewS3Client builds a client with static credentials. An empty endpoint keeps the AWS default.
func NewS3Client(ctx context.Context, accessKeyID, secretAccessKey, region, endpoint string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Archive is the document stored per backup.
type Archive struct {
	CreatedAt time.Time    `json:"created_at"`
	Posts     []model.Post `json:"posts"`
}

// Record is one row of the local backup history.
type Record struct {
	ID          int64
	ObjectKey   string
	PostCount   int
	ContentHash string
	CreatedAt   time.Time
}

type Options struct {
	Bucket     string
	Prefix     string
	Compressor compression.Compressor
	// Force uploads even when nothing changed since the last backup.
	Force bool
	Now   func() time.Time
}

type Backup struct {
	source   Source
	uploader Uploader
	database db.DB
	opts     Options
}

func New(source Source, uploader Uploader, database db.DB, opts Options) *Backup {
	if opts.Compressor == nil {
		opts.Compressor = compression.ZstdCompressor{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Backup{source: source, uploader: uploader, database: database, opts: opts}
}

// Run uploads every post the user owns. It returns ErrUnchanged, without uploading,
// when the posts hash the same as the last recorded backup.
func (b *Backup) Run(ctx context.Context) (*Record, error) {
	posts, err := b.source.ListMyPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	// The hash leaves out the archive timestamp.
	postsJSON, err := json.Marshal(posts)
	if err != nil {
		return nil, fmt.Errorf("encode posts: %w", err)
	}
	hash := util.ContentHash(postsJSON)

	if !b.opts.Force {
		last, err := b.Latest()
		if err != nil {
			return nil, err
		}
		if last != nil && last.ContentHash == hash {
			backupLogger.Info().Str("object_key", last.ObjectKey).Msg("Posts unchanged, skipping backup")
			return last, ErrUnchanged
		}
	}

	now := b.opts.Now().UTC()
	data, err := json.Marshal(Archive{CreatedAt: now, Posts: posts})
	if err != nil {
		return nil, fmt.Errorf("encode archive: %w", err)
	}
	compressed, err := b.opts.Compressor.Compress(data)
	if err != nil {
		return nil, fmt.Errorf("compress archive: %w", err)
	}

	key := b.objectKey(now)
	_, err = b.uploader.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.opts.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(compressed),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"post-count":   fmt.Sprint(len(posts)),
			"content-hash": hash,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	rec := &Record{ObjectKey: key, PostCount: len(posts), ContentHash: hash, CreatedAt: now}
	res, err := b.database.Exec(
		`INSERT INTO backups (object_key, post_count, content_hash, created_at) VALUES (?, ?, ?, ?)`,
		rec.ObjectKey, rec.PostCount, rec.ContentHash, rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("record backup: %w", err)
	}
	rec.ID, _ = res.LastInsertId()

	backupLogger.Info().
		Str("object_key", key).
		Int("posts", len(posts)).
		Int("bytes", len(compressed)).
		Msg("Backup uploaded")
	return rec, nil
}

func (b *Backup) objectKey(t time.Time) string {
	name := t.Format("20060102T150405Z") + ".json" + b.opts.Compressor.Extension()
	return path.Join(b.opts.Prefix, "backups", name)
}

// Latest is the most recent backup record, or nil when there is none.
func (b *Backup) Latest() (*Record, error) {
	records, err := b.History(1)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return &records[0], nil
}

// History lists recorded backups, newest first.
func (b *Backup) History(limit int) ([]Record, error) {
	rows, err := b.database.Query(
		`SELECT id, object_key, post_count, content_hash, created_at FROM backups ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query backups: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.ObjectKey, &r.PostCount, &r.ContentHash, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Decode reverses what Run uploaded.
func Decode(c compression.Compressor, data []byte) (*Archive, error) {
	raw, err := c.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("decompress archive: %w", err)
	}
	var a Archive
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode archive: %w", err)
	}
	return &a, nil
}
