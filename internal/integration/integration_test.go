package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"trivia-quiz-bot/internal/app"
	"trivia-quiz-bot/internal/domain"
	"trivia-quiz-bot/internal/ingest"
	pgstore "trivia-quiz-bot/internal/infra/postgres"
	pgmigrations "trivia-quiz-bot/internal/infra/postgres/migrations"
	redisstore "trivia-quiz-bot/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"golang.org/x/text/encoding/charmap"
)

func TestQuizDialogueEndToEndRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	client, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer client.Close()

	questions := redisstore.NewQuestionStore(client)
	sessions := redisstore.NewSessionStore(client)

	total, err := ingest.LoadDir(ctx, questions, writeCorpus(t), 0, ingest.EncodingKOI8R)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 questions ingested, got %d", total)
	}
	if n, err := questions.Count(ctx); err != nil || n != 2 {
		t.Fatalf("expected stored count 2, got %d (%v)", n, err)
	}

	engine := app.NewEngineWithPicker(questions, sessions, 0, func(n int) int { return 0 })
	userKey := domain.UserKey("tg", "42")

	reply, err := engine.RequestNewQuestion(ctx, userKey)
	if err != nil {
		t.Fatalf("request question: %v", err)
	}
	if reply.Text != "Столица Франции?" || reply.State != domain.StateAwaitingAnswer {
		t.Fatalf("unexpected question reply %+v", reply)
	}

	reply, err = engine.SubmitAnswer(ctx, userKey, "Лондон")
	if err != nil {
		t.Fatalf("wrong answer: %v", err)
	}
	if reply.State != domain.StateAwaitingAnswer {
		t.Fatalf("expected retry state, got %+v", reply)
	}

	reply, err = engine.SubmitAnswer(ctx, userKey, "париж")
	if err != nil {
		t.Fatalf("right answer: %v", err)
	}
	if reply.State != domain.StateAwaitingNewQuestion {
		t.Fatalf("expected success state, got %+v", reply)
	}

	reply, err = engine.ShowScore(ctx, userKey, domain.StateAwaitingNewQuestion)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if !strings.Contains(reply.Text, "удачных попыток: 1") || !strings.Contains(reply.Text, "неудачных попыток: 1") {
		t.Fatalf("unexpected score text %q", reply.Text)
	}

	// The session document is shared state any other transport instance sees.
	session, err := sessions.Get(ctx, userKey)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if session.Successful != 1 || session.Unsuccessful != 1 {
		t.Fatalf("unexpected counters %+v", session)
	}
}

func TestQuestionBankOnPostgres(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	migrateQuestions(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	questions := pgstore.NewQuestionStore(pool)
	total, err := ingest.LoadDir(ctx, questions, writeCorpus(t), 0, ingest.EncodingKOI8R)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 questions ingested, got %d", total)
	}

	got, err := questions.Get(ctx, 2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Prompt != "Сколько будет 2+2?" || got.Answer != "Четыре." {
		t.Fatalf("unexpected question %+v", got)
	}
	if _, err := questions.Get(ctx, 3); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	if n, err := questions.Count(ctx); err != nil || n != 2 {
		t.Fatalf("expected count 2, got %d (%v)", n, err)
	}

	// Re-ingesting the same corpus overwrites the same ids.
	if _, err := ingest.LoadDir(ctx, questions, writeCorpus(t), 0, ingest.EncodingKOI8R); err != nil {
		t.Fatalf("re-ingest: %v", err)
	}
	if n, _ := questions.Count(ctx); n != 2 {
		t.Fatalf("re-ingest must be idempotent, count %d", n)
	}
}

// writeCorpus drops a two-question KOI8-R corpus into a temp dir.
func writeCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	text := "Вопрос 1:\nСтолица Франции?\n\n" +
		"Ответ 1:\nПариж.\n\n" +
		"Вопрос 2:\nСколько будет 2+2?\n\n" +
		"Ответ 2:\nЧетыре."
	data, err := charmap.KOI8R.NewEncoder().Bytes([]byte(text))
	if err != nil {
		t.Fatalf("encode corpus: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tour01.txt"), data, 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	return dir
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateQuestions(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
