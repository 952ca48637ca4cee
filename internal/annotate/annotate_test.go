// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package annotate

import (
	"testing"

	"dbc/internal/exec"
)

func fixtureCatalog() *catalogEntry {
	return &catalogEntry{
		tableNames: map[uint32]string{
			100: "orders",
			200: "customers",
		},
		columns: map[columnRef]string{
			{RelID: 100, AttNum: 1}: "id",
			{RelID: 100, AttNum: 2}: "customer_id",
			{RelID: 200, AttNum: 1}: "id",
			{RelID: 200, AttNum: 2}: "name",
		},
		fks: map[columnRef]fkEdge{
			{RelID: 100, AttNum: 2}: {
				Constraint: "orders_customer_id_fkey",
				Table:      "customers",
				Column:     "id",
			},
		},
	}
}

func TestApplyCatalogResolvesSourceAndFK(t *testing.T) {
	cols := []exec.Column{
		{Name: "id", Ordinal: 0, TableOID: 100, TableAttributeNumber: 1},
		{Name: "customer_id", Ordinal: 1, TableOID: 100, TableAttributeNumber: 2},
	}
	applyCatalog(fixtureCatalog(), cols)

	if cols[0].SourceTable != "orders" || cols[0].SourceColumn != "id" {
		t.Errorf("unexpected annotation for id: %+v", cols[0])
	}
	if cols[0].FKConstraint != "" {
		t.Errorf("id should have no fk, got %+v", cols[0])
	}

	fk := cols[1]
	if fk.SourceTable != "orders" || fk.SourceColumn != "customer_id" {
		t.Errorf("unexpected source for customer_id: %+v", fk)
	}
	if fk.FKConstraint != "orders_customer_id_fkey" || fk.FKTable != "customers" || fk.FKColumn != "id" {
		t.Errorf("unexpected fk for customer_id: %+v", fk)
	}
}

func TestApplyCatalogSkipsColumnsWithoutTable(t *testing.T) {
	cols := []exec.Column{
		{Name: "count", Ordinal: 0, TableOID: 0},
	}
	applyCatalog(fixtureCatalog(), cols)

	if cols[0].SourceTable != "" || cols[0].SourceColumn != "" {
		t.Errorf("expression column should stay unannotated, got %+v", cols[0])
	}
}

func TestApplyCatalogUnknownColumnLeftUnannotated(t *testing.T) {
	cols := []exec.Column{
		{Name: "mystery", Ordinal: 0, TableOID: 999, TableAttributeNumber: 5},
	}
	applyCatalog(fixtureCatalog(), cols)

	if cols[0].SourceTable != "" || cols[0].SourceColumn != "" {
		t.Errorf("unknown relid should stay unannotated, got %+v", cols[0])
	}
}
