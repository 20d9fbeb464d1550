package mood

// Uniform 无可用类型时的中性向量
var Uniform = Vector{0.25, 0.25, 0.25, 0.25}

// EmbedItem 由影片类型计算情绪向量
// 各类型贡献相加后按分量和归一化；未映射类型忽略，全部无贡献时返回中性向量
func EmbedItem(genreIDs []int) Vector {
	var sum Vector
	for _, id := range genreIDs {
		c, ok := genreContributions[id]
		if !ok {
			continue
		}
		for i := range sum {
			sum[i] += c[i]
		}
	}

	total := sum.Sum()
	if total <= 0 {
		return Uniform
	}
	for i := range sum {
		sum[i] /= total
	}
	return sum
}
