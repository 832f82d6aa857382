package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/opst/knitlabel/pkg/conn/db/postgres/pool/testenv"
	"github.com/opst/knitlabel/pkg/conn/db/postgres/scanner"
	"github.com/opst/knitlabel/pkg/domain"
	kpglabel "github.com/opst/knitlabel/pkg/domain/label/db/postgres"
	kpgrecord "github.com/opst/knitlabel/pkg/domain/record/db/postgres"
	"github.com/opst/knitlabel/pkg/utils/try"
)

func TestLabel_ReplaceBySource(t *testing.T) {
	poolBroaker := testenv.NewPoolBroaker(context.Background(), t)

	ctx := context.Background()
	pool := poolBroaker.GetPool(ctx, t)

	recordId := uuid.NewString()
	fx := testenv.Fixture{
		ProjectId:   uuid.NewString(),
		AttributeId: uuid.NewString(),
		TaskId:      uuid.NewString(),
		Labels:      map[string]string{"PER": uuid.NewString(), "ORG": uuid.NewString()},
		Records:     map[string]int{recordId: 10},
		SourceId:    uuid.NewString(),
	}
	fx.Apply(ctx, t, pool)

	conn := try.To(pool.Acquire(ctx)).OrFatal(t)
	defer conn.Release()
	testee := kpglabel.New(conn)

	labels := try.To(testee.InTask(ctx, fx.ProjectId, fx.TaskId)).OrFatal(t)
	if len(labels) != 2 || labels["PER"] != fx.Labels["PER"] {
		t.Fatalf("unexpected labels: %v", labels)
	}

	maxIndex := try.To(
		kpgrecord.New(conn).MaxToken(ctx, fx.ProjectId, fx.TaskId, []string{recordId, uuid.NewString()}),
	).OrFatal(t)
	if len(maxIndex) != 1 || maxIndex[recordId] != 10 {
		t.Errorf("unexpected max token: %v", maxIndex)
	}

	association := func(label string, start, end int) domain.LabelAssociation {
		return domain.LabelAssociation{
			ProjectId:  fx.ProjectId,
			RecordId:   recordId,
			LabelId:    fx.Labels[label],
			SourceId:   fx.SourceId,
			SourceType: domain.LabeledBySource,
			Shape:      domain.SpanList,
			Confidence: 0.5,
			CreatedBy:  "user",
			Tokens:     domain.TokensOfSpan(start, end),
		}
	}

	countTokens := func() int {
		t.Helper()
		n := try.To(scanner.New[int64]().QueryAll(
			ctx, conn, `select count(*) from "record_label_association_token"`,
		)).OrFatal(t)
		return int(n[0])
	}

	deleted := try.To(testee.ReplaceBySource(
		ctx, fx.ProjectId, fx.SourceId,
		[]domain.LabelAssociation{association("PER", 0, 2), association("ORG", 4, 7)},
	)).OrFatal(t)
	if deleted != 0 {
		t.Errorf("first replace deleted %d", deleted)
	}
	if n := countTokens(); n != 5 {
		t.Errorf("tokens: actual = %d, expected = 5", n)
	}

	deleted = try.To(testee.ReplaceBySource(ctx, fx.ProjectId, fx.SourceId, nil)).OrFatal(t)
	if deleted != 2 {
		t.Errorf("second replace deleted %d, expected 2", deleted)
	}
	if n := countTokens(); n != 0 {
		t.Errorf("tokens remain: %d", n)
	}
}
