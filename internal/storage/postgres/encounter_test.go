package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/skirmish/internal/storage/postgres"
	"github.com/cory-johannsen/skirmish/internal/testutil"
)

func TestEncounterRepository_RecordAndRecent(t *testing.T) {
	pool := testutil.NewPool(t)
	ctx := context.Background()

	charID, err := postgres.NewCharacterRepository(pool.DB()).Save(ctx, makeSnapshot("Aldric"))
	require.NoError(t, err)

	repo := postgres.NewEncounterRepository(pool.DB())
	for i, tmpl := range []string{"young_wolf", "kobold", "hogger"} {
		_, err := repo.Record(ctx, postgres.EncounterRecord{
			CharacterID:     charID,
			MonsterTemplate: tmpl,
			MonsterLevel:    i + 1,
			Outcome:         "victory",
			Rounds:          3,
			Experience:      10,
			Gold:            i,
		})
		require.NoError(t, err)
	}

	recent, err := repo.Recent(ctx, charID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "hogger", recent[0].MonsterTemplate)
	assert.Equal(t, "kobold", recent[1].MonsterTemplate)
	assert.Equal(t, charID, recent[0].CharacterID)
}

func TestEncounterRepository_RecordRequiresCharacter(t *testing.T) {
	pool := testutil.NewPool(t)
	repo := postgres.NewEncounterRepository(pool.DB())

	_, err := repo.Record(context.Background(), postgres.EncounterRecord{
		CharacterID:     999999,
		MonsterTemplate: "young_wolf",
		MonsterLevel:    1,
		Outcome:         "fled",
	})
	assert.Error(t, err)
}

func TestStore_SaveEncounterIsAtomic(t *testing.T) {
	pool := testutil.NewPool(t)
	store := postgres.NewStore(pool)
	ctx := context.Background()

	snap := makeSnapshot("Brom")
	snap.Gold = 7
	require.NoError(t, store.SaveEncounter(ctx, snap, postgres.EncounterRecord{
		MonsterTemplate: "young_wolf",
		MonsterLevel:    1,
		Outcome:         "victory",
		Rounds:          4,
		Gold:            7,
	}))

	loaded, err := store.LoadCharacter(ctx, "Brom")
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Gold)

	stored, err := postgres.NewCharacterRepository(pool.DB()).Load(ctx, "Brom")
	require.NoError(t, err)
	recent, err := postgres.NewEncounterRepository(pool.DB()).Recent(ctx, stored.ID, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	// monster_level 0 fails its CHECK; the character update rolls back with it.
	snap.Gold = 99
	err = store.SaveEncounter(ctx, snap, postgres.EncounterRecord{
		MonsterTemplate: "young_wolf",
		MonsterLevel:    0,
		Outcome:         "victory",
	})
	require.Error(t, err)

	loaded, err = store.LoadCharacter(ctx, "Brom")
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Gold)
}

func TestStore_LoadUnknownCharacter(t *testing.T) {
	pool := testutil.NewPool(t)
	_, err := postgres.NewStore(pool).LoadCharacter(context.Background(), "ghost")
	assert.ErrorIs(t, err, postgres.ErrCharacterNotFound)
}

func TestMigrate_RejectsBadArguments(t *testing.T) {
	_, err := postgres.Migrate("postgres://unused", testutil.MigrationsDir(), "sideways", 0)
	assert.ErrorContains(t, err, "invalid direction")

	_, err = postgres.Migrate("postgres://unused", testutil.MigrationsDir(), postgres.DirectionUp, -1)
	assert.ErrorContains(t, err, "steps must be >= 0")
}

func TestMigrate_DownThenUp(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)

	res, err := postgres.Migrate(pc.DSN(), testutil.MigrationsDir(), postgres.DirectionUp, 0)
	require.NoError(t, err)
	assert.Equal(t, uint(2), res.Version)

	res, err = postgres.Migrate(pc.DSN(), testutil.MigrationsDir(), postgres.DirectionUp, 0)
	require.NoError(t, err)
	assert.True(t, res.NoChange)

	res, err = postgres.Migrate(pc.DSN(), testutil.MigrationsDir(), postgres.DirectionDown, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), res.Version)
	assert.False(t, res.Dirty)
}
