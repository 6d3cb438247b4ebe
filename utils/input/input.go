package input

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/tsinghua-fib-lab/hcca-sim/entity"
	"github.com/tsinghua-fib-lab/hcca-sim/entity/lattice"
)

// Load 从文本文件加载初始元胞状态
// 功能：读取文件并解析为元胞状态
// 参数：path-文件路径
// 返回：元胞状态，文件不存在或格式错误时返回错误
func Load(path string) (*lattice.Lattice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("input: read %s: %w", path, err)
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("input: %s: %w", path, err)
	}
	log.Infof("initial lattice loaded from %s: length=%d vehicles=%d/%d", path, l.Length(), l.Count(entity.LANE0), l.Count(entity.LANE1))
	return l, nil
}

// Parse 解析初始元胞状态
// 格式：
//   - 每条车道一行，共两行，长度相同
//   - '.'为空元胞，'0'-'9'为其他类型驾驶员及其速度，'a'-'j'为激进驾驶员及其速度0-9
//   - 空行与'#'开头的行被忽略
//
// 说明：所有车辆的阶段为正常运行
func Parse(data []byte) (*lattice.Lattice, error) {
	var rows []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rows = append(rows, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(rows) != entity.NumLanes {
		return nil, fmt.Errorf("expected %d lane rows, got %d", entity.NumLanes, len(rows))
	}
	length := len(rows[0])
	for lane, row := range rows {
		if len(row) != length {
			return nil, fmt.Errorf("lane %d has %d cells, lane 0 has %d", lane, len(row), length)
		}
	}
	if length == 0 {
		return nil, fmt.Errorf("empty lattice")
	}

	l := lattice.New(length)
	for lane, row := range rows {
		for pos := 0; pos < length; pos++ {
			ch := row[pos]
			v := entity.Vehicle{Stage: entity.StageRunning}
			switch {
			case ch == '.':
				continue
			case ch >= '0' && ch <= '9':
				v.Speed, v.Profile = int(ch-'0'), entity.ProfileOther
			case ch >= 'a' && ch <= 'j':
				v.Speed, v.Profile = int(ch-'a'), entity.ProfileRadical
			default:
				return nil, fmt.Errorf("lane %d cell %d: unexpected %q", lane, pos, ch)
			}
			l.Put(lane, pos, v)
		}
	}
	return l, nil
}
