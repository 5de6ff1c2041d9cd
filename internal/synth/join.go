package synth

import (
	"strings"

	"chatdb/pkg/models"
)

// keySuffixes 식별자성 컬럼 이름 접미사
var keySuffixes = []string{"_id", "id", "_key", "key", "_code", "code"}

// Joinable 두 컬럼 이름이 조인 키로 보이는지 판단
//   - 이름이 같거나 (대소문자 무시)
//   - 같은 접미사로 끝나고 접미사를 뗀 앞부분이 서로의 부분 문자열
func Joinable(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return true
	}
	for _, suffix := range keySuffixes {
		if !strings.HasSuffix(la, suffix) || !strings.HasSuffix(lb, suffix) {
			continue
		}
		pa, pb := strings.TrimSuffix(la, suffix), strings.TrimSuffix(lb, suffix)
		if strings.Contains(pa, pb) || strings.Contains(pb, pa) {
			return true
		}
	}
	return false
}

// JoinCandidates 기준 테이블과 다른 테이블들 사이의 조인 후보
// 이름 규칙으로 찾은 쌍과 선언된 외래 키를 합치고 중복은 제거한다.
func JoinCandidates(base models.Table, related ...models.Table) []models.JoinCandidate {
	var out []models.JoinCandidate
	seen := map[models.JoinCandidate]bool{}
	add := func(c models.JoinCandidate) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}

	for _, other := range related {
		if strings.EqualFold(other.Name, base.Name) {
			continue
		}
		for _, l := range base.Columns {
			for _, r := range other.Columns {
				if Joinable(l.Name, r.Name) {
					add(models.JoinCandidate{LeftTable: base.Name, LeftColumn: l.Name, RightTable: other.Name, RightColumn: r.Name})
				}
			}
		}
		for _, fk := range base.ForeignKeys {
			if strings.EqualFold(fk.RefTable, other.Name) && other.HasColumn(fk.RefColumn) {
				add(models.JoinCandidate{LeftTable: base.Name, LeftColumn: fk.Column, RightTable: other.Name, RightColumn: fk.RefColumn})
			}
		}
		for _, fk := range other.ForeignKeys {
			if strings.EqualFold(fk.RefTable, base.Name) && base.HasColumn(fk.RefColumn) {
				add(models.JoinCandidate{LeftTable: base.Name, LeftColumn: fk.RefColumn, RightTable: other.Name, RightColumn: fk.Column})
			}
		}
	}
	return out
}
