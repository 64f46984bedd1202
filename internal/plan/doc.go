// Package plan 加载多播频道规划并按顺序分配组地址。
//
// 规划文档（YAML 或 JSON）描述一个起始 URI 和若干频道：
//
//	base: udp://239.1.0.0:5000
//	skip_reserved: true
//	channels:
//	  - name: video
//	    count: 4
//	  - name: audio
//	    count: 2
//	    port: 5004
//	    query: codec=opus
//
// [Allocate] 从 base 开始逐个递增地址，依次分给每个频道；
// scheme、端口和查询串从 base 继承，频道可以覆盖端口和查询串。
//
// 加载基于 koanf（rawbytes provider + yaml/json parser），
// [Watch] 基于 fsnotify 监视规划文件并在内容变化时重新加载。
package plan
