package audit

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Recorder routes entity writes through the change log. The write and its
// records commit together in one transaction; a failure of either rolls back
// both. Records are published only after the commit, so subscribers never
// see changes that did not happen.
type Recorder struct {
	broker Broker
	policy *Policy
	now    func() time.Time
	newID  func() string
}

type RecorderOption func(*Recorder)

// WithClock sets the clock that stamps records.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) { r.now = now }
}

// WithIDGenerator sets how record identifiers are made. Defaults to random
// UUIDs.
func WithIDGenerator(newID func() string) RecorderOption {
	return func(r *Recorder) { r.newID = newID }
}

// NewRecorder returns a recorder publishing to broker. A nil broker disables
// publication; a nil policy is NewPolicy(DefaultOptOut...).
func NewRecorder(broker Broker, policy *Policy, opts ...RecorderOption) *Recorder {
	if policy == nil {
		policy = NewPolicy(DefaultOptOut...)
	}

	r := &Recorder{
		broker: broker,
		policy: policy,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Tx is a transaction whose writes are logged. Writes that bypass Tx, through
// DB, are not.
type Tx struct {
	r       *Recorder
	db      *gorm.DB
	pending []ChangeRecord
}

// DB is the underlying transaction, for reads and unlogged writes.
func (t *Tx) DB() *gorm.DB {
	return t.db
}

// Transaction runs fn in a transaction and publishes the records of its writes
// once it commits.
func (r *Recorder) Transaction(ctx context.Context, db *gorm.DB, fn func(tx *Tx) error) error {
	var committed []ChangeRecord

	err := db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		tx := &Tx{r: r, db: gtx}
		if err := fn(tx); err != nil {
			return err
		}

		if len(tx.pending) > 0 {
			if err := gtx.Create(&tx.pending).Error; err != nil {
				return fmt.Errorf("cannot write change records: %w", err)
			}
		}
		committed = tx.pending

		return nil
	})
	if err != nil {
		return err
	}

	for _, change := range committed {
		recordsWritten.WithLabelValues(string(change.Kind)).Inc()
	}
	r.publish(ctx, committed)

	return nil
}

// Create inserts entity and logs an INSERT.
func (r *Recorder) Create(ctx context.Context, db *gorm.DB, entity any) error {
	return r.Transaction(ctx, db, func(tx *Tx) error { return tx.Create(entity) })
}

// Update writes changes, keyed by column or field name, to entity and logs an
// UPDATE per column whose value differs from the one entity holds.
func (r *Recorder) Update(ctx context.Context, db *gorm.DB, entity any, changes map[string]any) error {
	return r.Transaction(ctx, db, func(tx *Tx) error { return tx.Update(entity, changes) })
}

// Delete removes entity and logs a REMOVE.
func (r *Recorder) Delete(ctx context.Context, db *gorm.DB, entity any) error {
	return r.Transaction(ctx, db, func(tx *Tx) error { return tx.Delete(entity) })
}

func (t *Tx) Create(entity any) error {
	if err := t.db.Create(entity).Error; err != nil {
		return err
	}

	target, ok, err := t.target(entity)
	if err != nil || !ok {
		return err
	}

	t.pending = append(t.pending, t.r.record(KindInsert, target, nil, nil))

	return nil
}

func (t *Tx) Update(entity any, changes map[string]any) error {
	target, ok, err := t.target(entity)
	if err != nil {
		return err
	}

	var updated []ChangeRecord
	if ok {
		updated, err = t.r.updates(t.db.Statement.Context, target, changes)
		if err != nil {
			return err
		}
	}

	if len(changes) > 0 {
		if err = t.db.Model(entity).Updates(changes).Error; err != nil {
			return err
		}
	}

	t.pending = append(t.pending, updated...)

	return nil
}

func (t *Tx) Delete(entity any) error {
	target, ok, err := t.target(entity)
	if err != nil {
		return err
	}

	if err = t.db.Delete(entity).Error; err != nil {
		return err
	}

	if ok {
		t.pending = append(t.pending, t.r.record(KindRemove, target, nil, nil))
	}

	return nil
}

type target struct {
	schema *schema.Schema
	value  reflect.Value
	id     string
}

// target resolves the audited identity of entity. ok is false when the
// entity is not eligible.
func (t *Tx) target(entity any) (target, bool, error) {
	stmt := &gorm.Statement{DB: t.db}
	if err := stmt.Parse(entity); err != nil {
		return target{}, false, fmt.Errorf("cannot parse %T: %w", entity, err)
	}

	if !t.r.policy.Eligible(stmt.Schema) {
		return target{}, false, nil
	}

	value := reflect.Indirect(reflect.ValueOf(entity))
	if value.Kind() != reflect.Struct {
		return target{}, false, fmt.Errorf("cannot audit %T: not a single entity", entity)
	}

	pk, _ := stmt.Schema.PrimaryFields[0].ValueOf(t.db.Statement.Context, value)

	return target{
		schema: stmt.Schema,
		value:  value,
		id:     lo.FromPtr(stringify(pk)),
	}, true, nil
}

// updates builds one record per changed column, in column order. Columns
// are published under their property name: category_id as categoryId.
func (r *Recorder) updates(ctx context.Context, tg target, changes map[string]any) ([]ChangeRecord, error) {
	names := lo.Keys(changes)
	slices.Sort(names)

	records := make([]ChangeRecord, 0, len(names))
	for _, name := range names {
		field := tg.schema.LookUpField(name)
		if field == nil || field.DBName == "" {
			return nil, fmt.Errorf("%s has no column %q", tg.schema.Name, name)
		}

		next := stringify(changes[name])
		current, _ := field.ValueOf(ctx, tg.value)
		if equalValues(stringify(current), next) {
			continue
		}

		column := lo.CamelCase(field.DBName)
		records = append(records, r.record(KindUpdate, tg, &column, next))
	}

	return records, nil
}

func (r *Recorder) record(kind Kind, tg target, column, value *string) ChangeRecord {
	return ChangeRecord{
		ID:               r.newID(),
		Kind:             kind,
		TargetEntityName: tg.schema.Name,
		TargetID:         tg.id,
		TargetColumn:     column,
		NewColumnValue:   value,
		CreatedAt:        r.now(),
	}
}

func (r *Recorder) publish(ctx context.Context, changes []ChangeRecord) {
	if r.broker == nil {
		return
	}

	for _, change := range changes {
		if err := r.broker.Publish(ctx, change); err != nil {
			publishFailures.Inc()
			log.WithError(err).WithFields(log.Fields{
				"change": change.ID,
				"target": change.TargetEntityName,
			}).Error("could not publish change")
		}
	}
}

func equalValues(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return *a == *b
}
