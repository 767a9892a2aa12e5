package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/minidungeon/internal/game/battle"
	"github.com/cory-johannsen/minidungeon/internal/game/character"
	"github.com/cory-johannsen/minidungeon/internal/game/inventory"
)

// ErrRunNotFound is returned when no run is stored for a player.
var ErrRunNotFound = errors.New("run not found")

// Run is everything needed to pick a game back up: the character, the bag,
// the battle snapshot, and the shop's stat point counter.
type Run struct {
	Player              string
	RunID               uuid.UUID
	Character           character.Character
	Bag                 map[inventory.Kind]int
	Battle              battle.Snapshot
	StatPointsPurchased int
	UpdatedAt           time.Time
}

// Unclean reports whether the run was saved in the middle of a battle.
func (r *Run) Unclean() bool {
	return r.Battle.Monster != nil && !r.Battle.CleanExit
}

// RunRepository stores one run per player.
type RunRepository struct {
	db *pgxpool.Pool
}

// NewRunRepository creates a RunRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRunRepository(db *pgxpool.Pool) *RunRepository {
	return &RunRepository{db: db}
}

type runRow struct {
	character []byte
	bag       []byte
	battle    []byte
}

func encodeRun(r *Run) (runRow, error) {
	var row runRow
	var err error
	if row.character, err = json.Marshal(r.Character); err != nil {
		return runRow{}, fmt.Errorf("encoding character: %w", err)
	}
	bag := r.Bag
	if bag == nil {
		bag = map[inventory.Kind]int{}
	}
	if row.bag, err = json.Marshal(bag); err != nil {
		return runRow{}, fmt.Errorf("encoding bag: %w", err)
	}
	if row.battle, err = json.Marshal(r.Battle); err != nil {
		return runRow{}, fmt.Errorf("encoding battle: %w", err)
	}
	return row, nil
}

func decodeRun(row runRow, r *Run) error {
	if err := json.Unmarshal(row.character, &r.Character); err != nil {
		return fmt.Errorf("decoding character: %w", err)
	}
	if err := json.Unmarshal(row.bag, &r.Bag); err != nil {
		return fmt.Errorf("decoding bag: %w", err)
	}
	if err := json.Unmarshal(row.battle, &r.Battle); err != nil {
		return fmt.Errorf("decoding battle: %w", err)
	}
	return nil
}

// Save inserts or replaces the player's run.
//
// Precondition: r.Player must be non-empty.
// Postcondition: a subsequent Load(r.Player) returns r with UpdatedAt set.
func (repo *RunRepository) Save(ctx context.Context, r *Run) error {
	if r.Player == "" {
		return errors.New("saving run: player must not be empty")
	}
	row, err := encodeRun(r)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	err = repo.db.QueryRow(ctx, `
		INSERT INTO runs
			(player, run_id, character, bag, battle, clean_exit, stat_points_purchased)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (player) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			character = EXCLUDED.character,
			bag = EXCLUDED.bag,
			battle = EXCLUDED.battle,
			clean_exit = EXCLUDED.clean_exit,
			stat_points_purchased = EXCLUDED.stat_points_purchased,
			updated_at = NOW()
		RETURNING updated_at`,
		r.Player, r.RunID, row.character, row.bag, row.battle,
		!r.Unclean(), r.StatPointsPurchased,
	).Scan(&r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// Load returns the player's stored run.
//
// Postcondition: Returns ErrRunNotFound if the player has no run.
func (repo *RunRepository) Load(ctx context.Context, player string) (*Run, error) {
	r := Run{Player: player}
	var row runRow
	err := repo.db.QueryRow(ctx, `
		SELECT run_id, character, bag, battle, stat_points_purchased, updated_at
		FROM runs WHERE player = $1`,
		player,
	).Scan(&r.RunID, &row.character, &row.bag, &row.battle, &r.StatPointsPurchased, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("loading run: %w", err)
	}
	if err := decodeRun(row, &r); err != nil {
		return nil, fmt.Errorf("loading run %s: %w", player, err)
	}
	return &r, nil
}

// Delete removes the player's run. Deleting a missing run is not an error.
func (repo *RunRepository) Delete(ctx context.Context, player string) error {
	if _, err := repo.db.Exec(ctx, `DELETE FROM runs WHERE player = $1`, player); err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	return nil
}

// ListUnclean returns the players whose runs were suspended mid-battle,
// most recent first.
func (repo *RunRepository) ListUnclean(ctx context.Context) ([]string, error) {
	rows, err := repo.db.Query(ctx, `
		SELECT player FROM runs WHERE clean_exit = FALSE ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing unclean runs: %w", err)
	}
	defer rows.Close()

	players := make([]string, 0)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
