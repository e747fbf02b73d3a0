package db

import (
	"context"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"

	"github.com/Alp4ka/quizhub/fulltext"
	"github.com/Alp4ka/quizhub/internal/models"
)

const hashTypeSearchDocument = "search_document"

// SchemaHash remembers the definition installed for a schema object so that
// unchanged objects are left alone on startup.
type SchemaHash struct {
	ID   uint   `gorm:"primaryKey"`
	Type string `gorm:"not null;uniqueIndex:idx_schema_hash_type_name"`
	Name string `gorm:"not null;uniqueIndex:idx_schema_hash_type_name"`
	Hash string `gorm:"not null"`
}

// SyncSearchDocuments installs every registered search document whose
// definition changed since it was last installed, backfilling existing rows.
func (d *DB) SyncSearchDocuments(ctx context.Context, registry *fulltext.Registry) error {
	for _, doc := range registry.Documents() {
		dlog := log.WithFields(log.Fields{"table": doc.Table, "column": doc.Column})
		hash := doc.Hash()

		current := SchemaHash{}
		res := d.DB.WithContext(ctx).Where("type = ? AND name = ?", hashTypeSearchDocument, doc.Table).Limit(1).Find(&current)
		if res.Error != nil {
			dlog.WithError(res.Error).Error("error looking up schema hash")
			return res.Error
		}

		if current.Hash == hash {
			dlog.Debug("no search document update required")
			continue
		}

		if current.ID == 0 {
			dlog.Info("no current hash in db, search document will be installed")
		} else {
			dlog.WithField("oldHash", current.Hash).Info("search document has changed, reinstalling")
		}

		if err := fulltext.Install(ctx, d.DB, doc, fulltext.WithBackfill()); err != nil {
			dlog.WithError(err).Error("error installing search document")
			return err
		}

		current.Type = hashTypeSearchDocument
		current.Name = doc.Table
		current.Hash = hash
		if res := d.DB.WithContext(ctx).Save(&current); res.Error != nil {
			dlog.WithError(res.Error).Error("error saving schema hash")
			return res.Error
		}
		dlog.WithField("hash", hash).Info("search document installed")
	}

	return nil
}

// SeedRoles creates the roles the application checks for.
func (d *DB) SeedRoles(ctx context.Context) error {
	for _, name := range []string{models.RoleAdmin, models.RoleTriviaAdmin} {
		role := models.UserRole{ID: models.NewID(models.TypeUserRole), Name: name}
		res := d.DB.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(&role)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			log.WithField("role", name).Info("created user role")
		}
	}

	return nil
}

// Bootstrap brings the derived schema up to date. It runs after Migrate.
func (d *DB) Bootstrap(ctx context.Context, registry *fulltext.Registry) error {
	if err := d.SeedRoles(ctx); err != nil {
		return err
	}

	return d.SyncSearchDocuments(ctx, registry)
}
